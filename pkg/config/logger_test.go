package config

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	RegisterTestingT(t)

	cfg := GetDefaultConfig()
	cfg.LogLevel = "loud"

	_, err := NewLogger(cfg)

	Expect(err).To(HaveOccurred())
}

func TestLogger_LokiEntryCarriesTraceAndFields(t *testing.T) {
	RegisterTestingT(t)

	cfg := GetDefaultConfig()
	cfg.LokiURL = "http://loki.local"

	logger, err := NewLogger(cfg)
	Expect(err).To(BeNil())

	provider := sdktrace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	entry, err := logger.lokiEntry(ctx, zapcore.ErrorLevel, "Error creating todo", []zap.Field{
		zap.Int64("todo.id", 7),
		zap.String("method", "POST"),
	})

	Expect(err).To(BeNil())
	Expect(entry.Streams).To(HaveLen(1))
	Expect(entry.Streams[0].Stream).To(HaveKeyWithValue("service", "todoapi"))
	Expect(entry.Streams[0].Stream).To(HaveKeyWithValue("level", "error"))

	var line map[string]any
	Expect(json.Unmarshal([]byte(entry.Streams[0].Values[0][1]), &line)).To(Succeed())

	Expect(line).To(HaveKeyWithValue("message", "Error creating todo"))
	Expect(line).To(HaveKeyWithValue("method", "POST"))
	Expect(line).To(HaveKeyWithValue("todo.id", BeNumerically("==", 7)))
	Expect(line).To(HaveKeyWithValue("trace_id", span.SpanContext().TraceID().String()))
}

func TestLogger_PushesToLoki(t *testing.T) {
	RegisterTestingT(t)

	received := make(chan []byte, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		if r.URL.Path == "/loki/api/v1/push" {
			received <- body
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := GetDefaultConfig()
	cfg.LokiURL = server.URL

	logger, err := NewLogger(cfg)
	Expect(err).To(BeNil())

	logger.InfoWithTrace(context.Background(), "HTTP Request", zap.Int("status", 200))

	var body []byte
	Eventually(received, 2*time.Second).Should(Receive(&body))
	Expect(string(body)).To(ContainSubstring(`HTTP Request`))
}

func TestNopLogger_DoesNotShip(t *testing.T) {
	RegisterTestingT(t)

	logger := NewNopLogger()

	Expect(func() {
		logger.ErrorWithTrace(context.Background(), "nothing to see")
	}).ToNot(Panic())
}
