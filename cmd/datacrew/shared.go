package datacrew

import (
	"context"

	"github.com/google/gops/agent"
	"github.com/viant/datacrew/internal/config"
	"github.com/viant/datacrew/internal/logger"
)

// Shared holds flags common to commands that load configuration.
type Shared struct {
	Env      string `long:"env" description:"dotenv file with OPENAI_API_KEY" default:".env"`
	Config   string `short:"f" long:"config" description:"YAML config file"`
	LogLevel string `long:"log-level" description:"log level: debug|info|warn|error"`
	Verbose  bool   `short:"v" long:"verbose" description:"log every agent step and tool call"`
	Diag     bool   `long:"diag" description:"start a gops diagnostics agent"`
}

// setup loads configuration and returns a context carrying the logger.
func (s *Shared) setup(ctx context.Context, overrides map[string]interface{}) (*config.Config, context.Context, error) {
	if overrides == nil {
		overrides = map[string]interface{}{}
	}
	switch {
	case s.LogLevel != "":
		overrides["log.level"] = s.LogLevel
	case s.Verbose:
		overrides["log.level"] = "debug"
	}
	cfg, err := config.Load(config.Options{EnvFile: s.Env, ConfigFile: s.Config, Overrides: overrides})
	if err != nil {
		return nil, ctx, err
	}
	if s.Diag {
		if err = agent.Listen(agent.Options{}); err != nil {
			return nil, ctx, err
		}
	}
	l, err := logger.New(logger.Options{Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err != nil {
		return nil, ctx, err
	}
	return cfg, logger.WithContext(ctx, l), nil
}
