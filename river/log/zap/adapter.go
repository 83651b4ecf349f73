// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package zap adapts a go.uber.org/zap.Logger to river/log.Logger. Adapted
// from the sibling log/zap adapter pattern used elsewhere in the retrieval
// pack (ngrok-ngrok-go's log/zap, log/logrus, log15 family): a thin wrapper
// translating a small leveled interface into the concrete library's calls.
package zap

import (
	"go.uber.org/zap"

	"github.com/riverrpc/river/log"
)

// Logger adapts *zap.Logger to river/log.Logger.
type Logger struct {
	z *zap.Logger
}

// New wraps z, skipping one extra stack frame so zap reports the caller of
// the river/log.Logger method rather than this adapter.
func New(z *zap.Logger) *Logger {
	return &Logger{z: z.WithOptions(zap.AddCallerSkip(1))}
}

var _ log.Logger = (*Logger)(nil)

func (l *Logger) Debug(msg string, keysAndValues ...any) { l.z.Sugar().Debugw(msg, keysAndValues...) }
func (l *Logger) Info(msg string, keysAndValues ...any)  { l.z.Sugar().Infow(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.z.Sugar().Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.z.Sugar().Errorw(msg, keysAndValues...) }
