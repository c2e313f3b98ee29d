// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "go.uber.org/zap"

// Logger is the injectable logging surface, matching the shape the
// teacher's file.go expects from Options.Logger (pe.logger.Errorf,
// Warnf, Debugf). The teacher's own implementation
// (saferwall/pe/log.Helper) wraps a structured backend behind exactly
// these four methods; here the backend is zap instead, but the
// interface callers see is unchanged.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (z *zapLogger) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }

// newDefaultLogger builds the logger used when Options.Logger is nil:
// a production zap logger filtered so only warnings and above reach
// output.
func newDefaultLogger() Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	l, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than panicking out of a
		// library constructor.
		return &noopLogger{}
	}
	return &zapLogger{s: l.Sugar()}
}

type noopLogger struct{}

func (*noopLogger) Debugf(string, ...interface{}) {}
func (*noopLogger) Infof(string, ...interface{})  {}
func (*noopLogger) Warnf(string, ...interface{})  {}
func (*noopLogger) Errorf(string, ...interface{}) {}
