package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
)

// bodies beyond this are logged truncated
const maxLoggedBody = 4 << 10

const filtered = "[FILTERED]"

// sensitiveFields are matched as substrings of lower-cased header and JSON keys.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"credential",
}

// Logging writes one debug line for the incoming request and one access line
// for the response, both through the request-scoped logger.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context())

		if lg.Enabled(r.Context(), slog.LevelDebug) {
			logRequest(lg, r)
		}

		rw := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		logResponse(lg, r, rw, time.Since(start))
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.body.Write(b[:room])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseRecorder) statusCode() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		body, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	}

	lg.Debug("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterHeaders(r.Header),
		"body", filterBody(body),
	)
}

func logResponse(lg *slog.Logger, r *http.Request, rw *responseRecorder, elapsed time.Duration) {
	status := rw.statusCode()

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"duration_ms", elapsed.Milliseconds(),
		"response_size", rw.size,
	}
	if status >= 400 {
		attrs = append(attrs, "body", filterBody(rw.body.Bytes()))
	}

	lg.Log(r.Context(), level, "response", attrs...)
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, f := range sensitiveFields {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func filterHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func filterBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		// not JSON, or truncated mid-document
		if isSensitive(string(body)) {
			return filtered
		}
		return string(body)
	}

	b, err := json.Marshal(filterJSON(data))
	if err != nil {
		return filtered
	}
	return string(b)
}

func filterJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
				continue
			}
			out[key] = filterJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = filterJSON(item)
		}
		return out
	default:
		return v
	}
}
