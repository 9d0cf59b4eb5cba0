package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// VerdictEvent is the downstream notification emitted after each validation.
type VerdictEvent struct {
	RequestHash string    `json:"request_hash"`
	Valid       bool      `json:"valid"`
	Reasons     []string  `json:"reasons"`
	Model       string    `json:"model"`
	Threshold   float64   `json:"threshold"`
	DurationMS  int64     `json:"duration_ms"`
	ProducedAt  time.Time `json:"produced_at"`
}

// PublishVerdict sends one verdict event. A nil writer is a no-op so the
// pipeline behaves identically with kafka disabled.
func PublishVerdict(ctx context.Context, writer *kafka.Writer, event VerdictEvent) error {
	if writer == nil {
		return nil
	}
	if event.ProducedAt.IsZero() {
		event.ProducedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verdict event: %w", err)
	}
	key := fmt.Sprintf("%s-%d", event.RequestHash, event.ProducedAt.UnixNano())
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload})
}
