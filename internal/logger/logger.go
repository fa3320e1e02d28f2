package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/config"
)

// New builds the process logger. Production logs JSON from info up, every
// other environment logs to the console from debug up. Each entry carries
// the environment name.
func New(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.InitialFields = map[string]any{"env": cfg.Env}

	lg, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return lg.Named("lingo-spark"), nil
}
