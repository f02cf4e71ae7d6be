package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// Failover tries the primary generator and, when it fails, retries the same
// instruction against the secondary. Callers see a single result or a single
// error: the primary's error when no secondary is configured, the
// secondary's error when both fail.
type Failover struct {
	primary   Generator
	secondary Generator
	logger    zerolog.Logger
}

// NewFailover composes a primary and an optional secondary generator.
func NewFailover(primary, secondary Generator, logger zerolog.Logger) *Failover {
	return &Failover{primary: primary, secondary: secondary, logger: logger}
}

// Generate implements Generator.
func (f *Failover) Generate(ctx context.Context, req Request) (string, error) {
	text, err := f.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}
	if f.secondary == nil {
		return "", err
	}
	f.logger.Warn().Err(err).Msg("llm: primary provider failed, retrying with secondary")
	text, secondaryErr := f.secondary.Generate(ctx, req)
	if secondaryErr != nil {
		return "", secondaryErr
	}
	return text, nil
}

var _ Generator = (*Failover)(nil)
