package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
	LevelFatal   = slog.Level(12)
)

const defaultServiceName = "prescreen"

// Options configures the process-wide logger
type Options struct {
	Level       string
	SampleRate  int // keep 1 of every SampleRate warnings/errors; <=1 keeps all
	OTELEnabled bool
	ServiceName string
	Output      io.Writer // JSON destination, stdout when nil
}

// Counters see every warning and error record, including sampled-out ones
var (
	TotalErrors   atomic.Int64
	TotalWarnings atomic.Int64
	Total4xx      atomic.Int64
	Total5xx      atomic.Int64
)

var (
	current  atomic.Pointer[slog.Logger]
	level    = new(slog.LevelVar)
	sampler  = &everyN{}
	shutdown atomic.Pointer[func(context.Context) error]
)

func init() {
	sampler.rate.Store(1)
	install(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: LevelTrace}))
}

// Setup applies opts. An unknown level leaves INFO in place and is returned
// as an error; so is an OTEL exporter failure, after falling back to JSON.
func Setup(ctx context.Context, opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	level.Set(lvl)
	sampler.reset(opts.SampleRate)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	jsonHandler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: LevelTrace})

	if !opts.OTELEnabled {
		install(jsonHandler)
		return err
	}

	name := opts.ServiceName
	if name == "" {
		name = defaultServiceName
	}

	otelHandler, stop, otelErr := newOTELHandler(ctx, name)
	if otelErr != nil {
		install(jsonHandler)
		Warn("otel logging unavailable, using JSON", "error", otelErr)
		return otelErr
	}

	shutdown.Store(&stop)
	install(otelHandler)
	return err
}

func install(next slog.Handler) {
	l := slog.New(&handler{next: next})
	current.Store(l)
	slog.SetDefault(l)
}

// newOTELHandler exports records over OTLP/gRPC under the given service name
func newOTELHandler(ctx context.Context, serviceName string) (slog.Handler, func(context.Context) error, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	return otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(provider)), provider.Shutdown, nil
}

// handler filters by the package level, counts warnings and errors, then
// samples them before passing records on
type handler struct {
	next slog.Handler
}

func (h *handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= level.Level()
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= LevelFatal:
		// never sampled
	case r.Level >= LevelError:
		TotalErrors.Add(1)
		if !sampler.keep() {
			return nil
		}
	case r.Level >= LevelWarning:
		TotalWarnings.Add(1)
		if !sampler.keep() {
			return nil
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{next: h.next.WithAttrs(attrs)}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{next: h.next.WithGroup(name)}
}

// everyN keeps the first record and then every rate-th one
type everyN struct {
	rate atomic.Int64
	seen atomic.Int64
}

func (s *everyN) reset(rate int) {
	if rate < 1 {
		rate = 1
	}
	s.rate.Store(int64(rate))
	s.seen.Store(0)
}

func (s *everyN) keep() bool {
	rate := s.rate.Load()
	if rate <= 1 {
		return true
	}
	return (s.seen.Add(1)-1)%rate == 0
}

// Shutdown flushes the OTEL exporter, if one is installed
func Shutdown(ctx context.Context) error {
	if stop := shutdown.Swap(nil); stop != nil {
		return (*stop)(ctx)
	}
	return nil
}

func SetLevel(l slog.Level) { level.Set(l) }

func GetLevel() slog.Level { return level.Level() }

// ParseLevel maps a level name to a Level. Empty means INFO.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", name)
}

// ObserveStatus counts an HTTP response status in Total4xx or Total5xx
func ObserveStatus(status int) {
	switch {
	case status >= 500:
		Total5xx.Add(1)
	case status >= 400:
		Total4xx.Add(1)
	}
}

func logAt(l slog.Level, msg string, args ...any) {
	current.Load().Log(context.Background(), l, msg, args...)
}

func Trace(msg string, args ...any) { logAt(LevelTrace, msg, args...) }

func Debug(msg string, args ...any) { logAt(LevelDebug, msg, args...) }

func Info(msg string, args ...any) { logAt(LevelInfo, msg, args...) }

// Warn is sampled; TotalWarnings is not
func Warn(msg string, args ...any) { logAt(LevelWarning, msg, args...) }

// Error is sampled; TotalErrors is not
func Error(msg string, args ...any) { logAt(LevelError, msg, args...) }

// Fatal logs, flushes the exporter and exits with status 1
func Fatal(msg string, args ...any) {
	logAt(LevelFatal, msg, args...)
	_ = Shutdown(context.Background())
	os.Exit(1)
}
