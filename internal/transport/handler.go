// Package transport exposes the HTTP and WebSocket surface of the
// backend.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/esplora"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/monitor"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/utils"
)

var txidPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Analyzer produces one-shot reports.
type Analyzer interface {
	Analyze(ctx context.Context, txid string) (model.AnalysisReport, error)
}

// TxFetcher fetches raw transactions for passthrough responses.
type TxFetcher interface {
	GetTransaction(ctx context.Context, txid string) (model.Transaction, error)
}

// Handler serves the REST endpoints and the live WebSocket feed.
type Handler struct {
	analyzer Analyzer
	source   TxFetcher
	monitor  *monitor.Monitor
	logger   *zap.Logger
}

// NewHandler constructs the transport handler.
func NewHandler(analyzer Analyzer, source TxFetcher, mon *monitor.Monitor, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		source:   source,
		monitor:  mon,
		logger:   logger.Named("transport"),
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/debug/{txid}", h.handleDebug)
	mux.HandleFunc("GET /api/tx/{txid}", h.handleRawTx)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /ws/live", h.handleLive)
	mux.HandleFunc("GET /{$}", h.handleIndex)
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	txid := r.PathValue("txid")
	if !txidPattern.MatchString(txid) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid transaction id"))
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), txid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, esplora.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleRawTx(w http.ResponseWriter, r *http.Request) {
	txid := r.PathValue("txid")
	if !txidPattern.MatchString(txid) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid transaction id"))
		return
	}

	tx, err := h.source.GetTransaction(r.Context(), txid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, esplora.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type statsEntry struct {
	model.ProtocolStats
	TotalValueBTC float64 `json:"total_value_btc"`
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.monitor.StatsSnapshot()
	out := make(map[string]statsEntry, len(snapshot))
	for name, entry := range snapshot {
		out[name] = statsEntry{
			ProtocolStats: entry,
			TotalValueBTC: utils.SatoshisToBTC(entry.TotalValue),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "bitcoin metaprotocol watcher",
		"endpoints": map[string]string{
			"debug": "POST /api/debug/{txid}",
			"raw":   "GET /api/tx/{txid}",
			"stats": "GET /api/stats",
			"live":  "GET /ws/live",
		},
	})
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
