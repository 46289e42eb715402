// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go - NO GOLEM DEPENDENCY
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv selects the library log level: debug, info, warn or error.
const LogLevelEnv = "LEDGER_LOG_LEVEL"

var log *zap.SugaredLogger

func init() {
	initLogger()
}

func initLogger() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(parseLogLevel(getLogLevel()))

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	log = logger.Sugar().Named("ledger")
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func getLogLevel() string {
	level := os.Getenv(LogLevelEnv)
	if level == "" {
		level = "info"
	}
	return strings.ToLower(level)
}

// SetLogger replaces the package logger. A nil logger silences it.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log = logger.Sugar().Named("ledger")
}
