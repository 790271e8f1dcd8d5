// Package zap adapts a zap.Logger to niche.Logger.
package zap

import (
	"go.uber.org/zap"

	niche "github.com/Unrealaaaaaa/Niche-review"
)

type Logger struct{ L *zap.Logger }

var _ niche.Logger = Logger{}

func (z Logger) Debug(msg string, f niche.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f niche.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f niche.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f niche.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f niche.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
