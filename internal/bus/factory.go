package bus

import (
	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
)

// New creates an event bus from configuration.
func New(cfg config.BusConfig, log *logger.Logger) (Bus, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryBus(log), nil
	case "kafka":
		return NewKafkaBus(KafkaConfig{
			Brokers: ParseKafkaBrokers(cfg.KafkaBrokers),
		}, log)
	default:
		return nil, errors.ConfigError("unknown bus type: " + cfg.Type)
	}
}
