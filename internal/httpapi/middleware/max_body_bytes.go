// Package middleware holds chi-compatible HTTP middleware for the admin
// surface.
package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

const payloadTooLargeJSON = `{"error":{"code":"PAYLOAD_TOO_LARGE","message":"request body exceeds size limit"}}`

// MaxBodyBytes rejects requests whose body exceeds maxBytes with a 413.
// Content-Length is checked first for a fast rejection; the body is still
// wrapped in http.MaxBytesReader to catch chunked or spoofed lengths.
func MaxBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > 0 && r.ContentLength > maxBytes {
				writeTooLarge(w, r)
				return
			}

			body := http.MaxBytesReader(w, r.Body, maxBytes)
			buf, err := io.ReadAll(body)
			if err != nil {
				slog.WarnContext(r.Context(), "request body size limit exceeded",
					"method", r.Method, "path", r.URL.Path, "limit", maxBytes, "error", err)
				writeTooLarge(w, r)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(buf))
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	if _, err := w.Write([]byte(payloadTooLargeJSON)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write payload too large response", "error", err)
	}
}
