package backend

import (
	"context"

	"mybalance/internal/amqp"
	"mybalance/internal/ledger"
	"mybalance/internal/services"
	"mybalance/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store, the optional AMQP client and
// a cleanup function that releases both.
type BackendResult struct {
	Store ledger.Store
	// AMQP is nil when messaging is disabled or the broker was unreachable
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Notifier returns the AMQP client as a services.Notifier, or a nil
// interface when messaging is unavailable.
func (r *BackendResult) Notifier() services.Notifier {
	if r == nil || r.AMQP == nil {
		return nil
	}
	return r.AMQP
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the ledger store and, when configured, the AMQP client
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the Google Sheets exporter when a spreadsheet is
	// configured and an in-memory mirror otherwise
	CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type            BackendType
	DuplicatePolicy ledger.DuplicatePolicy

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string

	// Messaging
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
