package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appbundle/internal/bundle"
	"github.com/wolfeidau/appbundle/internal/logger"
)

// Handler serves the build output directory for the dev server. Requests
// under a proxy prefix are forwarded to the api endpoint, unknown paths fall
// back to index.html when history api fallback is enabled.
func Handler(cfg bundle.Configuration) http.Handler {
	mux := http.NewServeMux()

	for prefix, target := range cfg.DevServer.Proxy {
		proxy, err := NewProxyHandler(target)
		if err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Str("target", target).Msg("API proxy disabled")
			continue
		}

		prefix = "/" + strings.Trim(prefix, "/")
		if prefix == "/" {
			log.Warn().Str("target", target).Msg("API proxy needs a path prefix, disabled")
			continue
		}
		mux.Handle(prefix, proxy)
		mux.Handle(prefix+"/", proxy)

		log.Info().Str("prefix", prefix).Str("target", target).Msg("Proxying API requests")
	}

	mux.Handle("/", staticHandler(cfg.Output.Path, cfg.DevServer.HistoryAPIFallback))

	return logger.Requests(log.Logger)(cors.AllowAll().Handler(gzhttp.GzipHandler(mux)))
}

var errNotAbsoluteURL = errors.New("api endpoint must be an absolute http(s) url")

// NewProxyHandler creates a reverse proxy forwarding requests to target.
func NewProxyHandler(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errNotAbsoluteURL
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = u.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("API proxy request failed")
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}

	return proxy, nil
}

func staticHandler(dir string, historyFallback bool) http.Handler {
	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if historyFallback && !exists(dir, r.URL.Path) && path.Ext(r.URL.Path) == "" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func exists(dir, urlPath string) bool {
	name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))
	_, err := os.Stat(name)
	return err == nil
}

// Server is the dev server bound to the configured host and port.
type Server struct {
	srv *http.Server
}

// New creates a dev server for the configuration.
func New(cfg bundle.Configuration) *Server {
	addr := cfg.DevServer.Host + ":" + cfg.DevServer.Port
	return &Server{srv: configureHTTPServer(addr, Handler(cfg))}
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("Starting dev server")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// configureHTTPServer bounds header reads tightly, the long body timeouts
// leave room for slow proxied api calls.
func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
