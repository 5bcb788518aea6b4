package monitor

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// corsHandler allows browser dashboards on the listed origins to read the API.
func corsHandler(origins []string, h http.Handler) http.Handler {
	if len(origins) == 0 {
		return h
	}

	slog.Debug("cors configured", "component", "monitor", "allowed_origins", origins)
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

type brotliResponseWriter struct {
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	return w.bw.Write(b)
}

// compress brotli-encodes responses for clients that accept br.
func compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "br")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")

		bw := brotli.NewWriter(w)
		defer bw.Close()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}

// limit rejects requests beyond limiter's rate with 429.
func limit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "10")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func newProfileLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(10*time.Second), 1)
}
