// Package logrus adapts a logrus.Entry to niche.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	niche "github.com/Unrealaaaaaa/Niche-review"
)

type Logger struct{ E *logrus.Entry }

var _ niche.Logger = Logger{}

func (l Logger) Debug(msg string, f niche.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f niche.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f niche.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f niche.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
