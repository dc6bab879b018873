package main

import (
	"go.uber.org/zap"

	"tripplanner/internal/config"
	"tripplanner/internal/logging"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", serviceName)), nil
}
