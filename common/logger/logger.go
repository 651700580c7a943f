package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger instance
	Log = zap.NewNop()
)

// RequestIDKey is the key used to store request ID in the gin context
const RequestIDKey = "request_id"

type ctxKey struct{}

// Initialize sets up the logger with the specified environment
func Initialize(env string) *zap.Logger {
	return InitializeWithWriter(env, nil)
}

// InitializeWithWriter sets up the logger with the specified environment and
// optional CloudWatch writer.
func InitializeWithWriter(env string, cloudWatchWriter io.Writer) *zap.Logger {
	config := newConfig(env)

	if cloudWatchWriter != nil {
		encoder := zapcore.NewJSONEncoder(config.EncoderConfig)

		consoleEncoder := zapcore.NewConsoleEncoder(config.EncoderConfig)
		consoleLevel := zap.NewAtomicLevelAt(config.Level.Level())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), consoleLevel)

		cwLevel := zap.NewAtomicLevelAt(config.Level.Level())
		cwCore := zapcore.NewCore(encoder, zapcore.AddSync(cloudWatchWriter), cwLevel)

		Log = zap.New(zapcore.NewTee(consoleCore, cwCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		l, err := config.Build()
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		Log = l
	}

	zap.ReplaceGlobals(Log)
	return Log
}

func newConfig(env string) zap.Config {
	if env == "production" {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return config
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config
}

// WithRequestID returns l annotated with the request ID carried by ctx. l is
// returned unchanged when ctx has none. A nil l falls back to Log.
func WithRequestID(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = Log
	}
	if id := RequestID(ctx); id != "unknown" {
		return l.With(zap.String("request_id", id))
	}
	return l
}

// RequestID extracts the request ID from a gin or plain context.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if requestID := ginCtx.GetString(RequestIDKey); requestID != "" {
			return requestID
		}
		if ginCtx.Request == nil {
			return "unknown"
		}
		ctx = ginCtx.Request.Context()
	}
	if requestID, ok := ctx.Value(ctxKey{}).(string); ok && requestID != "" {
		return requestID
	}
	return "unknown"
}

// WithContext creates a new context with the given request ID
func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// StripeLogger routes stripe-go's leveled logging through zap.
func StripeLogger(l *zap.Logger) stripe.LeveledLoggerInterface {
	if l == nil {
		l = Log
	}
	return l.Named("stripe").WithOptions(zap.AddCallerSkip(1)).Sugar()
}
