package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mybalance/internal/core"
)

// BalanceRecomputedMessage announces that the balance history was rebuilt.
// The consumer reads the full history from the store; the summary fields
// let it skip work and log what changed.
type BalanceRecomputedMessage struct {
	ID           string    `json:"id"`
	Records      int       `json:"records"`
	LatestDate   string    `json:"latest_date"`
	BalanceCents int64     `json:"balance_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewBalanceRecomputedMessage(records []core.BalanceRecord) *BalanceRecomputedMessage {
	latest := core.Latest(records)
	return &BalanceRecomputedMessage{
		ID:           uuid.NewString(),
		Records:      len(records),
		LatestDate:   latest.Date.String(),
		BalanceCents: latest.Balance.Cents,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BalanceRecomputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BalanceRecomputedMessageFromJSON creates a message from JSON bytes
func BalanceRecomputedMessageFromJSON(data []byte) (*BalanceRecomputedMessage, error) {
	var msg BalanceRecomputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
