package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AlfredDev/connpool/config"
	"github.com/AlfredDev/connpool/logger"
	gwmw "github.com/AlfredDev/connpool/middleware"
	"github.com/AlfredDev/connpool/pool"
	"github.com/AlfredDev/connpool/redisclient"
	"github.com/AlfredDev/connpool/router"
	"github.com/AlfredDev/connpool/transport"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	log.Info().Str("env", cfg.Env).Msg("poolboard starting")

	rc, err := redisclient.New(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis init failed — continuing without stats publishing")
		rc = nil
	} else if err := rc.Ping(); err != nil {
		log.Warn().Err(err).Msg("redis ping failed — continuing without stats publishing")
		rc = nil
	} else {
		log.Info().Msg("redis connected")
	}

	var idleTimeout *time.Duration
	if cfg.PoolIdleTimeout > 0 {
		idleTimeout = &cfg.PoolIdleTimeout
	}
	p := pool.New[*transport.Conn](idleTimeout)
	if !cfg.PoolEnabled {
		p.Close()
		log.Warn().Msg("pool disabled via POOL_ENABLED=false; every checkout will miss")
	}

	dialer := transport.NewDialer(cfg.DialTimeout, log)
	dialer.Limiter = gwmw.NewDialLimiter(cfg.MaxDialsPerHost)
	coordinator := transport.NewConnectCoordinator()

	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.DialTimeout*time.Duration(len(cfg.WarmOrigins)+1))
	warmPoolOrigins(warmCtx, log, p, dialer, coordinator, cfg.WarmOrigins)
	warmCancel()

	collector := pool.NewCollector[*transport.Conn](p)
	r := router.New(cfg, log, p, collector)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var statsCancel context.CancelFunc
	if rc != nil {
		var statsCtx context.Context
		statsCtx, statsCancel = context.WithCancel(context.Background())
		go rc.PublishLoop(statsCtx, log, "poolboard:pool:stats", 15*time.Second, func() any {
			return p.Snapshot()
		})
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("poolboard listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	if statsCancel != nil {
		statsCancel()
	}
	p.Close()
	if rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("poolboard stopped gracefully")
	}
}

// warmPoolOrigins dials every configured "host:port/version" origin eagerly
// and installs the result into the pool, demonstrating the immediate-idle
// install path for Http2 keys versus the lazy-idle path for Http1 (pool
// package, Pool.Pooled doc comment). Failures are logged and skipped —
// a cold key still works via the ordinary checkout/park/dial path later,
// this is strictly an optimization.
func warmPoolOrigins(ctx context.Context, log zerolog.Logger, p *pool.Pool[*transport.Conn], dialer *transport.Dialer, coordinator *transport.ConnectCoordinator, origins []string) {
	for _, origin := range origins {
		host, key, secure, ok := parseWarmOrigin(origin)
		if !ok {
			log.Warn().Str("origin", origin).Msg("skipping malformed POOL_WARM_ORIGINS entry")
			continue
		}

		conn, err := coordinator.Connect(ctx, p, key, dialer, host, secure)
		if err != nil {
			log.Warn().Err(err).Str("origin", host).Msg("warm dial failed")
			continue
		}

		pooled := p.Pooled(key, conn)
		if key.Ver == pool.VersionH1 {
			pooled.Idle()
		}
		log.Info().Str("origin", host).Str("version", key.Ver.String()).Msg("warmed connection")
	}
}

// parseWarmOrigin parses "host:port/h1" or "host:port/h2" into a dial
// target and pool key. Port 443 means TLS and any other port means
// plaintext; the entry format has no way to override this.
func parseWarmOrigin(origin string) (host string, key pool.Key, secure bool, ok bool) {
	parts := strings.SplitN(origin, "/", 2)
	host = parts[0]
	ver := pool.VersionH1
	if len(parts) == 2 {
		switch strings.ToLower(parts[1]) {
		case "h2":
			ver = pool.VersionH2
		case "h1":
			ver = pool.VersionH1
		default:
			return "", pool.Key{}, false, false
		}
	}

	if _, portStr, err := net.SplitHostPort(host); err == nil {
		if port, convErr := strconv.Atoi(portStr); convErr == nil && port == 443 {
			secure = true
		}
	}

	return host, pool.Key{Origin: host, Ver: ver}, secure, true
}
