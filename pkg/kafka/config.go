package kafka

import "time"

// Config holds Kafka connection configuration
type Config struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(clientID string) *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     clientID,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics used by the production service
var Topics = struct {
	ProductionEvents string
}{
	ProductionEvents: "production-events",
}

// Event types published by the production service
const (
	EventCasesImported        = "production.cases.imported"
	EventCasesDeleted         = "production.cases.deleted"
	EventProductivityRecorded = "production.productivity.recorded"
)
