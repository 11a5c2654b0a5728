package launchdash

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/tfkr-ae/launchdash/format"
)

// minCompressSize is the smallest body worth compressing.
const minCompressSize = 256

// withRequestID tags every request with a fresh uuid v7, in the context and in the
// X-Request-ID response header.
func (dash *Dashboard) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewV7()
		if err != nil {
			dash.Logger.Error("generating request id", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-Request-ID", id.String())
		r = ContextWithRequestID(r, id)
		r = ContextWithRequestTime(r, time.Now())
		next.ServeHTTP(w, r)
	})
}

// statusWriter records the status code and body size written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(status int) {
	if sw.status == 0 {
		sw.status = status
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// withAccessLog writes one structured log line per request.
func (dash *Dashboard) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, ok := RequestTimeFromContext(r.Context())
		if !ok {
			start = time.Now()
		}
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start),
		}
		if id, ok := RequestIDFromContext(r.Context()); ok {
			attrs = append(attrs, "request_id", id.String())
		}
		dash.Logger.Info("request", attrs...)
	})
}

// bufferedWriter holds a response until the handler returns so the body can be
// prettified and compressed as a whole.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (bw *bufferedWriter) Header() http.Header { return bw.header }

func (bw *bufferedWriter) WriteHeader(status int) {
	if bw.status == 0 {
		bw.status = status
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.body.Write(b)
}

// withEncoding prettifies bodies when pretty_output is set and compresses them with br
// or gzip when compression is enabled and the client accepts it.
func (dash *Dashboard) withEncoding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !dash.Config.PrettyOutput && !dash.Config.Compression {
			next.ServeHTTP(w, r)
			return
		}
		bw := newBufferedWriter()
		next.ServeHTTP(bw, r)
		if bw.status == 0 {
			bw.status = http.StatusOK
		}

		body := bw.body.Bytes()
		if dash.Config.PrettyOutput && len(body) > 0 {
			body = format.Body(bw.header.Get("Content-Type"), body)
		}

		for k, v := range bw.header {
			w.Header()[k] = v
		}
		if dash.Config.Compression && r.Method != http.MethodHead && len(body) >= minCompressSize {
			w.Header().Add("Vary", "Accept-Encoding")
			if encoding := negotiateEncoding(r.Header.Get("Accept-Encoding")); encoding != "" {
				compressed, err := compress(encoding, body)
				if err != nil {
					dash.Logger.Warn("compressing response", "encoding", encoding, "error", err)
				} else {
					body = compressed
					w.Header().Set("Content-Encoding", encoding)
				}
			}
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(bw.status)
		if r.Method != http.MethodHead {
			w.Write(body)
		}
	})
}

// negotiateEncoding picks br over gzip from an Accept-Encoding header, honouring q=0.
func negotiateEncoding(header string) string {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		q := 1.0
		for _, param := range strings.Split(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if ok && strings.TrimSpace(key) == "q" {
				if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
					q = parsed
				}
			}
		}
		accepted[name] = q > 0
	}
	for _, encoding := range []string{"br", "gzip"} {
		if ok, listed := accepted[encoding]; listed {
			if ok {
				return encoding
			}
			continue
		}
		if accepted["*"] {
			return encoding
		}
	}
	return ""
}

func compress(encoding string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	var writer io.WriteCloser
	switch encoding {
	case "br":
		writer = brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	case "gzip":
		writer = gzip.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	if _, err := writer.Write(body); err != nil {
		return nil, fmt.Errorf("writing %s content : %w", encoding, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing %s writer : %w", encoding, err)
	}
	return buf.Bytes(), nil
}
