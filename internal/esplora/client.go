// Package esplora is an HTTP client for esplora-compatible block
// explorer APIs, used as the transaction source.
package esplora

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/ratelimit"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// ErrNotFound reports that the source does not know the requested
// transaction id.
var ErrNotFound = errors.New("transaction not found")

const (
	// DefaultBaseURL is the public blockstream esplora endpoint.
	DefaultBaseURL = "https://blockstream.info/api"

	defaultTimeout = 15 * time.Second
	defaultRPS     = 4

	// mempoolTxLimit caps candidate ids taken per mempool listing.
	mempoolTxLimit = 5
	// blockTxLimit caps candidate ids taken from the most recent block.
	blockTxLimit = 10
)

// Metrics records outcomes of API calls.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Client wraps the esplora REST API with rate limiting and metrics
// instrumentation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    ratelimit.Limiter
	metrics    Metrics
	addresses  *AddressDecoder
}

// NewClient constructs a client. Empty baseURL selects the public
// endpoint; non-positive rps selects the default limit. The decoder may
// be nil when output address enrichment is not wanted.
func NewClient(baseURL string, rps int, metrics Metrics, addresses *AddressDecoder) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		limiter:    ratelimit.New(rps),
		metrics:    metrics,
		addresses:  addresses,
	}
}

// GetTransaction fetches one transaction by id. Unknown ids and
// non-success statuses yield ErrNotFound.
func (c *Client) GetTransaction(ctx context.Context, txid string) (tx model.Transaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("get_transaction", err, started)
	}()

	if err = c.getJSON(ctx, "/tx/"+txid, &tx); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txid, err)
	}
	c.fillAddresses(&tx)
	return tx, nil
}

// RecentMempoolTxIDs lists up to mempoolTxLimit candidate ids from the
// mempool.
func (c *Client) RecentMempoolTxIDs(ctx context.Context) (ids []string, err error) {
	started := time.Now()
	defer func() {
		c.observe("recent_mempool_txids", err, started)
	}()

	if err = c.getJSON(ctx, "/mempool/txids", &ids); err != nil {
		return nil, fmt.Errorf("list mempool txids: %w", err)
	}
	if len(ids) > mempoolTxLimit {
		ids = ids[:mempoolTxLimit]
	}
	return ids, nil
}

// RecentBlockTxIDs lists up to blockTxLimit transaction ids of the most
// recent block.
func (c *Client) RecentBlockTxIDs(ctx context.Context) (ids []string, err error) {
	started := time.Now()
	defer func() {
		c.observe("recent_block_txids", err, started)
	}()

	var blocks []struct {
		ID string `json:"id"`
	}
	if err = c.getJSON(ctx, "/blocks", &blocks); err != nil {
		return nil, fmt.Errorf("list recent blocks: %w", err)
	}
	if len(blocks) == 0 {
		return nil, nil
	}

	if err = c.getJSON(ctx, "/block/"+blocks[0].ID+"/txids", &ids); err != nil {
		return nil, fmt.Errorf("list block %s txids: %w", blocks[0].ID, err)
	}
	if len(ids) > blockTxLimit {
		ids = ids[:blockTxLimit]
	}
	return ids, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	c.limiter.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %w", resp.StatusCode, ErrNotFound)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// fillAddresses decodes locking scripts into addresses for outputs the
// API returned without one. Undecodable scripts stay empty.
func (c *Client) fillAddresses(tx *model.Transaction) {
	if c.addresses == nil {
		return
	}
	for i := range tx.Vout {
		if tx.Vout[i].Address != "" {
			continue
		}
		tx.Vout[i].Address = c.addresses.Decode(tx.Vout[i].ScriptPubKey)
	}
}

func (c *Client) observe(operation string, err error, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Observe(operation, err, started)
}
