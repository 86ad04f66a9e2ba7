// Package server hosts the TCP acceptor, per-connection handler, and
// optional admin HTTP mux for kvflowd.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kvflow/internal/logger"
	"kvflow/internal/store"
)

// Config bundles the acceptor's tunables; it is deliberately narrower
// than the full config.Config so this package doesn't import it.
type Config struct {
	Address         string
	Dir             string
	DBFile          string
	RateLimitPerSec float64
	MetricsAddress  string
}

// Acceptor binds the RESP listener (and, if configured, the admin HTTP
// mux) and runs the accept loop until its context is cancelled.
type Acceptor struct {
	cfg     Config
	store   *store.Store
	metrics *Metrics
}

// New constructs an Acceptor. It seeds the `dir`/`dbfilename` keys into
// the store, per the config-key bootstrap contract CONFIG GET/SET rely
// on. metrics is constructed by the caller (via NewMetrics) so the
// startup snapshot load, which happens before the acceptor exists, can
// record against the same series.
func New(cfg Config, s *store.Store, metrics *Metrics) *Acceptor {
	s.Set("dir", cfg.Dir)
	s.Set("dbfilename", cfg.DBFile)

	return &Acceptor{cfg: cfg, store: s, metrics: metrics}
}

// Run binds the listener(s) and serves until ctx is cancelled.
func (a *Acceptor) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return err
	}
	defer ln.Close()
	return a.Serve(ctx, ln)
}

// Serve runs the accept loop against an already-bound listener, e.g.
// one obtained via net.Listen("tcp", "127.0.0.1:0") so the OS assigns a
// free port. The admin mux, if configured, is also started here on its
// own address and shut down when ctx is cancelled.
func (a *Acceptor) Serve(ctx context.Context, ln net.Listener) error {
	logger.Info("server: listening on %s", ln.Addr())

	if a.cfg.MetricsAddress != "" {
		admin := a.newAdminServer()
		go func() {
			logger.Info("server: admin mux listening on %s", a.cfg.MetricsAddress)
			if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server: admin mux error: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = admin.Shutdown(shutdownCtx)
		}()
	}

	type acceptResult struct {
		nc  net.Conn
		err error
	}
	accepted := make(chan acceptResult)

	go func() {
		for {
			nc, err := ln.Accept()
			accepted <- acceptResult{nc, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-accepted:
			if res.err != nil {
				logger.Error("server: accept error: %v", res.err)
				return res.err
			}
			a.metrics.ConnectionsTotal.Inc()
			a.metrics.ConnectionsActive.Inc()
			c := newConn(res.nc, a.store, a.metrics, a.cfg.RateLimitPerSec)
			go func() {
				defer a.metrics.ConnectionsActive.Dec()
				c.serve(ctx)
			}()
		}
	}
}

func (a *Acceptor) newAdminServer() *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:    a.cfg.MetricsAddress,
		Handler: r,
	}
}
