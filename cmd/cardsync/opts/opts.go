package opts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
	// ConfigExplicit is set when --config was given, a missing file is then an error
	ConfigExplicit bool
}

// LoadConfig reads the config file and lays the command line values over it
func (o *RootOpts) LoadConfig(ctx context.Context, overrides config.Overrides) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, o.ConfigFile, o.ConfigExplicit)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	if err := cfg.Apply(overrides); err != nil {
		return nil, errors.Errorf("applying flags: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("file", cfg.Location()).Str("config", cfg.String()).Msg("config loaded")
	return cfg, nil
}
