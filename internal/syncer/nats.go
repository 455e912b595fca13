package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nurturefox/trackd/internal/model"
)

const kvBucket = "trackd"

// NATS implements Channel on a JetStream key-value bucket. A KV put is
// exactly the slot the design calls for: one key, last write wins, reads
// on demand, no ordering across writers.
type NATS struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// ConnectNATS dials the server, ensures the bucket, and returns the channel.
func ConnectNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}
	kv, err := js.KeyValue(kvBucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: kvBucket, History: 1})
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &NATS{conn: conn, kv: kv}, nil
}

// ConnectNATSWithRetry keeps dialing until timeout; companion devices come
// and go so a cold start should not give up on the first refused dial.
func ConnectNATSWithRetry(url string, timeout time.Duration) (*NATS, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		ch, err := ConnectNATS(url)
		if err == nil {
			return ch, nil
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("connect nats timeout after %s: %w", timeout, lastErr)
}

func (n *NATS) Publish(ctx context.Context, state model.LastFeedState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = n.kv.Put(SlotKey, payload)
	return err
}

func (n *NATS) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := n.kv.Get(SlotKey)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	var state model.LastFeedState
	if err := json.Unmarshal(entry.Value(), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Close drains the connection.
func (n *NATS) Close() {
	if n == nil || n.conn == nil {
		return
	}
	_ = n.conn.Drain()
	n.conn.Close()
}
