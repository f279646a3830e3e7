package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger for the given environment. Production gets JSON
// output; everything else gets the human-readable development encoder.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewNamed creates a logger carrying the service name on every entry.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}
