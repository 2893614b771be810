package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger. Entries written through Ctx carry the
// trace and span ids of the context. When a Loki URL is configured the
// *WithTrace helpers also push the entry to Loki.
type Logger struct {
	*otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLogger(cfg *AppConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)

	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := zapConfig.Build(zap.Fields(zap.String("service", cfg.ServiceName)))

	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	logger := &Logger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: cfg.ServiceName,
	}

	if cfg.LokiURL != "" {
		logger.lokiURL = cfg.LokiURL + "/loki/api/v1/push"
		logger.httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	return logger, nil
}

func NewNopLogger() *Logger {
	return &Logger{
		Logger:      otelzap.New(zap.NewNop()),
		ServiceName: DefaultServiceName,
	}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Ctx(ctx).Info(msg, fields...)
	l.ship(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Ctx(ctx).Warn(msg, fields...)
	l.ship(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Ctx(ctx).Error(msg, fields...)
	l.ship(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) ship(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	if l.lokiURL == "" {
		return
	}

	entry, err := l.lokiEntry(ctx, level, msg, fields)

	if err != nil {
		l.Logger.Error("Failed to encode loki entry", zap.Error(err))
		return
	}

	go l.push(entry)
}

func (l *Logger) lokiEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) (lokiPush, error) {
	encoder := zapcore.NewMapObjectEncoder()

	for _, field := range fields {
		field.AddTo(encoder)
	}

	line := encoder.Fields
	line["timestamp"] = time.Now().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg
	line["service"] = l.ServiceName

	if spanContext := trace.SpanContextFromContext(ctx); spanContext.IsValid() {
		line["trace_id"] = spanContext.TraceID().String()
		line["span_id"] = spanContext.SpanID().String()
	}

	body, err := json.Marshal(line)

	if err != nil {
		return lokiPush{}, err
	}

	return lokiPush{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), string(body)},
				},
			},
		},
	}, nil
}

func (l *Logger) push(entry lokiPush) {
	body, err := json.Marshal(entry)

	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))

	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)

	if err != nil {
		l.Logger.Warn("Failed to push logs to loki", zap.Error(err))
		return
	}

	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
