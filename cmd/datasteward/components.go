package main

import (
	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/pseudonymize"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"go.uber.org/zap"
)

// newEventWriter returns the ClickHouse writer, or the log writer when no DSN
// is set or ClickHouse is unreachable.
func newEventWriter(cfg *config.Config, logger *zap.Logger) storage.EventWriter {
	if cfg.ClickHouseDSN == "" {
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
		return storage.NewLogWriter(logger)
	}
	w, err := storage.NewClickHouseWriter(cfg.ClickHouseDSN, logger)
	if err != nil {
		logger.Warn("clickhouse connection failed, falling back to log writer", zap.Error(err))
		return storage.NewLogWriter(logger)
	}
	logger.Info("clickhouse writer connected")
	return w
}

// newTools wires connectors, the registry and the auditing wrapper.
func newTools(cfg *config.Config, events storage.EventWriter, logger *zap.Logger) (*registry.Auditor, error) {
	conn := connectors.New(cfg, logger)
	reg, err := registry.New(conn)
	if err != nil {
		return nil, err
	}
	pseudo := pseudonymize.New(cfg.PseudonymSalt)
	return registry.NewAuditor(reg, events, pseudo, conn.MockMode(), logger), nil
}

// newEventReader opens the ClickHouse audit reader. It returns nil when no DSN
// is set or the connection fails; the audit routes then answer 503.
func newEventReader(cfg *config.Config, logger *zap.Logger) *storage.Reader {
	if cfg.ClickHouseDSN == "" {
		return nil
	}
	r, err := storage.NewReader(cfg.ClickHouseDSN, logger)
	if err != nil {
		logger.Warn("clickhouse reader unavailable, audit routes disabled", zap.Error(err))
		return nil
	}
	return r
}
