// Package logging attaches structured-logging subscribers to the event bus.
// One log line per finished unit of work: HTTP request, GraphQL operation,
// delegation, subschema round trip.
package logging

import (
	"context"

	eventbus "github.com/hanpama/stitch/internal/eventbus"
	events "github.com/hanpama/stitch/internal/events"
	reqid "github.com/hanpama/stitch/internal/reqid"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup builds a logger at the given level and registers the event
// subscribers. The caller owns the returned logger and should Sync it on
// shutdown. level accepts zap's names ("debug", "info", "warn", "error");
// an empty level means "info".
func Setup(level string, development bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		lvl, err = zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	Subscribe(logger)
	return logger, nil
}

// Subscribe registers bus subscribers writing to logger. Split from Setup so
// tests can attach an observer core.
func Subscribe(logger *zap.Logger) {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		logger.Info("http request",
			requestID(ctx),
			zap.String("method", e.Request.Method),
			zap.String("path", e.Request.URL.Path),
			zap.Int("status", e.Status),
			zap.Duration("duration", e.Duration),
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		log := logger.Info
		if len(e.Errors) > 0 {
			log = logger.Warn
		}
		log("graphql operation",
			requestID(ctx),
			zap.String("operation", e.OperationName),
			zap.Int("errors", len(e.Errors)),
			zap.Duration("duration", e.Duration),
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.DelegationFinish) {
		log := logger.Debug
		if len(e.Errors) > 0 {
			log = logger.Warn
		}
		log("delegation",
			requestID(ctx),
			zap.String("field", e.FieldName),
			zap.String("operation_type", e.OperationType),
			zap.Int("errors", len(e.Errors)),
			zap.Duration("duration", e.Duration),
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.SubschemaRequestFinish) {
		if e.Err != nil {
			logger.Error("subschema request",
				requestID(ctx),
				zap.String("endpoint", e.Endpoint),
				zap.Error(e.Err),
				zap.Duration("duration", e.Duration),
			)
			return
		}
		logger.Debug("subschema request",
			requestID(ctx),
			zap.String("endpoint", e.Endpoint),
			zap.Int("status", e.StatusCode),
			zap.Duration("duration", e.Duration),
		)
	})
}

func requestID(ctx context.Context) zap.Field {
	rid, ok := reqid.FromContext(ctx)
	if !ok {
		return zap.Skip()
	}
	return zap.Int64("request_id", rid)
}
