package logger

import (
	"os"

	"photostudio-bot/internal/config"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const permissions = 0o644

func New(cfg config.Logger) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level)

	var output zapcore.WriteSyncer
	switch cfg.Sink {
	case "", "stdout":
		output = zapcore.Lock(os.Stdout)
	case "stderr":
		output = zapcore.Lock(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Sink, os.O_WRONLY|os.O_CREATE|os.O_APPEND, permissions)
		if err != nil {
			return nil, err
		}
		output = zapcore.AddSync(file)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime:    zapcore.TimeEncoderOfLayout("[2006-01-02 15:04:05]"),
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Encoding == "json" {
		// В JSON цвета только мешают
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = colorLevelEncoder()
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, output, level)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel переводит строковый уровень из конфига в zapcore.Level, по умолчанию info
func ParseLevel(raw string) zapcore.Level {
	switch raw {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func colorLevelEncoder() zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		switch l {
		case zapcore.DebugLevel:
			enc.AppendString(color.MagentaString("DEBUG:"))
		case zapcore.InfoLevel:
			enc.AppendString(color.BlueString("INFO:"))
		case zapcore.WarnLevel:
			enc.AppendString(color.YellowString("WARN:"))
		case zapcore.ErrorLevel:
			enc.AppendString(color.RedString("ERROR:"))
		default:
			enc.AppendString(l.String() + ":")
		}
	}
}
