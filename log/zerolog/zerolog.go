// Package zerolog adapts a zerolog.Logger to niche.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	niche "github.com/Unrealaaaaaa/Niche-review"
)

type Logger struct{ L zerolog.Logger }

var _ niche.Logger = Logger{}

func (z Logger) Debug(msg string, f niche.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Info(msg string, f niche.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Warn(msg string, f niche.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Error(msg string, f niche.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }
