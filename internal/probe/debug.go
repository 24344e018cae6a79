package probe

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"loadprobe/internal/core"
)

const maxBodyLogSize = 1024

// DebugLogger logs every request and response at debug level. A nil
// *DebugLogger is valid and logs nothing.
type DebugLogger struct {
	log logrus.FieldLogger
}

func NewDebugLogger(log logrus.FieldLogger) *DebugLogger {
	return &DebugLogger{log: log}
}

func (d *DebugLogger) LogRequest(workerID int, req *http.Request) {
	if d == nil {
		return
	}
	fields := logrus.Fields{
		"worker": workerID,
		"method": req.Method,
		"url":    req.URL.String(),
	}
	if len(req.Header) > 0 {
		fields["headers"] = formatHeaders(req.Header)
	}
	d.log.WithFields(fields).Debug(">>> request")
}

func (d *DebugLogger) LogResponse(workerID int, ep core.Endpoint, resp *http.Response, body []byte, duration time.Duration) {
	if d == nil {
		return
	}
	fields := logrus.Fields{
		"worker":   workerID,
		"method":   ep.Method,
		"path":     ep.Path,
		"status":   resp.StatusCode,
		"duration": duration.Round(time.Microsecond).String(),
		"bytes":    len(body),
	}
	if len(body) > 0 {
		fields["body"] = truncateBody(body)
	}
	d.log.WithFields(fields).Debug("<<< response")
}

func (d *DebugLogger) LogError(workerID int, ep core.Endpoint, err error, duration time.Duration) {
	if d == nil {
		return
	}
	d.log.WithFields(logrus.Fields{
		"worker":   workerID,
		"method":   ep.Method,
		"path":     ep.Path,
		"duration": duration.Round(time.Microsecond).String(),
	}).WithError(err).Debug("!!! transport failure")
}

func formatHeaders(h http.Header) string {
	parts := make([]string, 0, len(h))
	for name, values := range h {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(values, ", ")))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func truncateBody(body []byte) string {
	if len(body) <= maxBodyLogSize {
		return string(body)
	}
	return string(body[:maxBodyLogSize]) + fmt.Sprintf("... (truncated, %d bytes total)", len(body))
}
