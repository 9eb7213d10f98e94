package panel

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/pkg/schema"
)

// requestIDHeader carries the correlation id in and out of the panel.
const requestIDHeader = "X-Request-ID"

// toJSON marshals a value to indented JSON for template rendering.
func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// fmtFloat formats a float for display.
func fmtFloat(v float64) string {
	return schema.FormatFloat(v)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFlowError maps err to a status code and writes it with its code.
func writeFlowError(w http.ResponseWriter, err error) {
	var fe *schema.FlowError
	if !errors.As(err, &fe) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, statusFor(fe.Code), map[string]any{
		"error": fe.Message,
		"code":  fe.Code,
	})
}

func statusFor(code string) int {
	switch code {
	case schema.ErrCodeInvalidViewport, schema.ErrCodeExpression, schema.ErrCodeValidation:
		return http.StatusBadRequest
	case schema.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// queryInt extracts an integer query param with a default value. A value
// that is present but not an integer is an INVALID_VIEWPORT error.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, schema.NewErrorf(schema.ErrCodeInvalidViewport, "%s %q is not an integer", key, v).WithCause(err)
	}
	return n, nil
}

// viewport reads width and height, falling back to the configured defaults.
func (s *PanelServer) viewport(r *http.Request) (int, int, error) {
	width, err := queryInt(r, "width", s.deps.DefaultWidth)
	if err != nil {
		return 0, 0, err
	}
	height, err := queryInt(r, "height", s.deps.DefaultHeight)
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withRequestContext tags every request with a request id and the panel
// source, so logs and events can be correlated.
func (s *PanelServer) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := logging.WithRequestID(r.Context(), id)
		ctx = logging.WithSource(ctx, Source)
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.deps.Logger.DebugContext(ctx, "panel request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
		)
	})
}
