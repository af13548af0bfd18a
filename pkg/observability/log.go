package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("trace")}
}

// Install registers h for all hook categories.
func (h *LogHooks) Install() {
	SetExportHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnExportStart(_ context.Context, selected int, format string) {
	h.logger.Debug("export start", "selected", selected, "format", format)
}

func (h *LogHooks) OnEnrich(_ context.Context, ids int, detail string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("enrich failed", "ids", ids, "detail", detail, "duration", d, "err", err)
		return
	}
	h.logger.Debug("enrich", "ids", ids, "detail", detail, "duration", d)
}

func (h *LogHooks) OnExportComplete(_ context.Context, records int, format string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("export failed", "format", format, "duration", d, "err", err)
		return
	}
	h.logger.Debug("export complete", "records", records, "format", format, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ ExportHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)
