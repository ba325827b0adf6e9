package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ccastromar/chat-relay/internal/api"
	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/ccastromar/chat-relay/internal/health"
	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/metrics"
	"github.com/ccastromar/chat-relay/internal/runtime"
	"github.com/ccastromar/chat-relay/internal/ui"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(env *config.EnvVars, handler http.Handler) *HTTPServer {
	read, write := env.ReadTimeout, env.WriteTimeout
	if read <= 0 {
		read = 10 * time.Second
	}
	// a reply may wait on two provider calls
	if floor := 2*env.LLMTimeout + 5*time.Second; write < floor {
		write = floor
	}
	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + env.Port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       read,
			WriteTimeout:      write,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
		},
	}
}

// NewRouter mounts every route behind the shared middleware stack. The
// timeline pages are mounted only when uiStore is non-nil.
func NewRouter(chatAPI *api.ChatAPI, uiStore *ui.UIStore, rt *runtime.Runtime) http.Handler {
	r := chi.NewRouter()
	r.Use(secureMiddleware)
	r.Use(api.RequestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(requestLogMiddleware)

	r.Get("/", ui.HandleChat)
	r.Handle("/static/*", ui.StaticHandler())
	if uiStore != nil {
		r.Get("/ui", uiStore.HandleIndex)
		r.Get("/ui/request", uiStore.HandleRequest)
	}

	r.Get("/health/live", health.LiveHandler)
	r.Get("/health/ready", health.ReadyHandler(rt))
	r.Handle("/metrics", metrics.Handler())

	chatAPI.Routes(r)
	return r
}

func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logx.Info("HTTP", "listening on %s", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logx.Info("HTTP", "shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutCtx)
	}
}

// secureMiddleware adds basic hardening to HTTP server:
// - Common security headers
// - Body size limit
// - Block TRACE method
func secureMiddleware(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Block TRACE to avoid request smuggling tricks
		if r.Method == http.MethodTrace {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// Modern browsers ignore X-XSS-Protection; set to 0 to disable legacy filter quirks
		w.Header().Set("X-XSS-Protection", "0")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self'")
		// HSTS only when TLS is enabled
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error("HTTP", "panic recovered on %s: %v", r.URL.Path, rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// requestLogMiddleware logs every request and records the HTTP metrics
// under the matched route pattern.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		elapsed := time.Since(start)
		path := routePattern(r)

		if path != "/metrics" {
			logx.Logger().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", api.RequestID(r.Context())),
			)
		}

		metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())
	})
}

// routePattern keeps metric labels bounded; unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
