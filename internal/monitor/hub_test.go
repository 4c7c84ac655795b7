package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

func liveTx(i int) model.LiveTransaction {
	return model.LiveTransaction{
		TxID:       fmt.Sprintf("tx-%04d", i),
		Timestamp:  time.Unix(int64(i), 0).UTC(),
		Protocols:  []string{"brc20"},
		TotalValue: uint64(i),
	}
}

func TestHub_SubscriberSeesPublishesInOrder(t *testing.T) {
	t.Parallel()

	h := NewHub(16, nil)
	sub := h.Subscribe()
	defer sub.Close()

	const n = 10
	for i := 0; i < n; i++ {
		h.Publish(liveTx(i))
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-sub.C():
			assert.Equal(t, fmt.Sprintf("tx-%04d", i), got.TxID)
		default:
			t.Fatalf("expected message %d to be buffered", i)
		}
	}
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra message %s", extra.TxID)
	default:
	}
}

func TestHub_LateSubscriberSeesNothing(t *testing.T) {
	t.Parallel()

	h := NewHub(16, nil)
	for i := 0; i < 5; i++ {
		h.Publish(liveTx(i))
	}

	sub := h.Subscribe()
	defer sub.Close()

	select {
	case got := <-sub.C():
		t.Fatalf("late subscriber received %s", got.TxID)
	default:
	}
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	h := NewHub(4, nil)
	h.Publish(liveTx(1))
}

func TestHub_LaggingSubscriberLosesOldest(t *testing.T) {
	t.Parallel()

	const backlog = 4
	h := NewHub(backlog, nil)
	sub := h.Subscribe()
	defer sub.Close()

	// Publish well past capacity without reading; the publisher must not
	// block and the oldest messages must be evicted.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			h.Publish(liveTx(i))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a lagging subscriber")
	}

	var received []string
	for {
		select {
		case lt := <-sub.C():
			received = append(received, lt.TxID)
			continue
		default:
		}
		break
	}

	require.Len(t, received, backlog)
	// Drop-oldest keeps the newest backlog's worth of messages.
	assert.Equal(t, []string{"tx-0016", "tx-0017", "tx-0018", "tx-0019"}, received)
}

func TestHub_IndependentSubscribers(t *testing.T) {
	t.Parallel()

	h := NewHub(16, nil)
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(liveTx(1))
	a.Close()
	a.Close() // closing twice is safe
	h.Publish(liveTx(2))

	got := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		select {
		case lt := <-b.C():
			got = append(got, lt.TxID)
		default:
			t.Fatal("subscriber b missed a message")
		}
	}
	assert.Equal(t, []string{"tx-0001", "tx-0002"}, got)
	b.Close()

	_, ok := <-b.C()
	assert.False(t, ok, "channel should be closed after Close")
}
