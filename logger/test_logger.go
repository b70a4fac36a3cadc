package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewNop returns a logger that discards all output
func NewNop() *CtxZapLogger {
	return &CtxZapLogger{base: zap.NewNop(), module: "nop"}
}

// NewTestLogger returns a logger that writes through the test runner,
// so output is shown only for failing tests
func NewTestLogger(t zaptest.TestingT) *CtxZapLogger {
	return &CtxZapLogger{base: zaptest.NewLogger(t), module: "test"}
}
