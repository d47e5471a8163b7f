package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// LogConfig controls the global logger sinks and levels.
type LogConfig struct {
	Level        string // file/global level: debug|info|warn|error
	ConsoleLevel string // stderr level; empty means same as Level
	DebugFile    string // optional file sink receiving Level and above
	Development  bool   // console encoder with caller info
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes the global sugared logger.
func InitLogger(cfg LogConfig) error {
	consoleLevel := cfg.ConsoleLevel
	if consoleLevel == "" {
		consoleLevel = cfg.Level
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var consoleEnc zapcore.Encoder
	if cfg.Development {
		devCfg := zap.NewDevelopmentEncoderConfig()
		consoleEnc = zapcore.NewConsoleEncoder(devCfg)
	} else {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), parseLevel(consoleLevel)),
	}

	if cfg.DebugFile != "" {
		f, err := os.OpenFile(cfg.DebugFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(f), parseLevel(cfg.Level)))
	}

	z := zap.New(zapcore.NewTee(cores...))
	if cfg.Development {
		z = z.WithOptions(zap.AddCaller())
	}

	logger = z.Sugar()
	return nil
}

// L returns the global sugared logger.
// If InitLogger has not been called, it initializes at info level.
func L() *zap.SugaredLogger {
	if logger == nil {
		_ = InitLogger(LogConfig{Level: "info"})
	}
	return logger
}
