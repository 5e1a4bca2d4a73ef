package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/eguisync/eguisync/internal/config"
	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/logging"
	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/registry"
	"github.com/eguisync/eguisync/internal/server"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve", "start":
		serve()
	case "version":
		fmt.Printf("eguisyncd v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() {
	cfgPath := "eguisyncd.yaml"
	if len(os.Args) > 2 {
		cfgPath = os.Args[2]
	}

	logger, startupCloser := logging.New("info", "json", "stdout")
	if startupCloser != nil {
		defer startupCloser.Close()
	}
	logger.Info("eguisyncd starting", "version", version)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	if startupCloser != nil {
		_ = startupCloser.Close()
		startupCloser = nil
	}
	logger, logCloser := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if logCloser != nil {
		defer logCloser.Close()
	}

	reg := registry.New()
	sender := transport.NewSender()
	connected := &atomic.Bool{}
	dispatcher := dispatch.NewDispatcher(cfg.Logging.DispatchDebug)

	slots, err := wireDemoSlots(reg, sender, connected, dispatcher)
	if err != nil {
		logger.Error("failed to register demo slots", "error", err)
		os.Exit(1)
	}
	reg.Seal()

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	reg.SetMetrics(m)
	dispatcher.SetMetrics(m)

	srv := server.New(cfg, reg, sender, connected, dispatcher, m, logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, srv)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}
	httpSrv := &http.Server{Addr: cfg.Server.Address, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runDemoWorkload(ctx, logger, slots, dispatcher)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("eguisyncd ready", "address", cfg.Server.Address, "path", cfg.Server.Path)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	srv.Shutdown()

	logger.Info("eguisyncd stopped")
}

// demoSlots holds the handful of slots wireDemoSlots registers, passed
// to the background workload that drives them so a connecting client
// has something to observe.
type demoSlots struct {
	counter *registry.Value[uint32]
	banner  *registry.Static[string]
	clicked *registry.Signal
	log     *registry.List
	users   *registry.Map
}

func wireDemoSlots(reg *registry.Registry, sender *transport.Sender, connected *atomic.Bool, dispatcher *dispatch.Dispatcher) (*demoSlots, error) {
	counter, err := registry.RegisterValue(reg, "counter", uint32(0), marshalU32, unmarshalU32, typeinfo.U32(), sender, connected, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("registering counter: %w", err)
	}

	banner, err := registry.RegisterStatic(reg, "banner", "eguisyncd demo", marshalString, unmarshalString, typeinfo.String(), sender, connected)
	if err != nil {
		return nil, fmt.Errorf("registering banner: %w", err)
	}

	clicked, err := registry.RegisterSignal(reg, "clicked", typeinfo.Empty(), dispatcher)
	if err != nil {
		return nil, fmt.Errorf("registering clicked: %w", err)
	}
	dispatcher.SetRegistered(clicked.ID(), true)

	log, err := registry.RegisterList(reg, "log", typeinfo.String(), sender, connected)
	if err != nil {
		return nil, fmt.Errorf("registering log: %w", err)
	}

	users, err := registry.RegisterMap(reg, "users", typeinfo.String(), typeinfo.U32(), sender, connected)
	if err != nil {
		return nil, fmt.Errorf("registering users: %w", err)
	}

	return &demoSlots{counter: counter, banner: banner, clicked: clicked, log: log, users: users}, nil
}

// runDemoWorkload is the demo binary's only reason to exist: push
// periodic updates to the counter, log and users slots so a connecting
// client has something to render, and log each client-originated
// click signal as it arrives. The banner and clicked slots get no
// server-side updates.
func runDemoWorkload(ctx context.Context, logger *slog.Logger, slots *demoSlots, dispatcher *dispatch.Dispatcher) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var n uint32
	go func() {
		var lastID uint64
		var hasPrev bool
		for {
			id, payload, ok := dispatcher.Wait(ctx, lastID, hasPrev)
			if !ok {
				return
			}
			lastID, hasPrev = id, true
			if id == slots.clicked.ID() {
				logger.Info("client clicked", "payload_len", len(payload))
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n++
			slots.counter.Set(n, false, false)
			if n%10 == 0 {
				slots.users.SetItem([]byte(fmt.Sprintf("user-%d", n)), marshalU32(n), true)
			}
			if n%5 == 0 {
				slots.log.AppendItem([]byte(fmt.Sprintf("tick %d", n)), true)
			}
		}
	}
}

func marshalU32(v uint32) []byte {
	b := make([]byte, 4)
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return b
}

func unmarshalU32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("short u32 payload: %d bytes", len(b))
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func marshalString(s string) []byte { return []byte(s) }

func unmarshalString(b []byte) (string, error) { return string(b), nil }

func printUsage() {
	fmt.Fprint(os.Stdout, `eguisyncd - state-synchronization demo server

Usage:
  eguisyncd <command> [config]

Commands:
  serve [config]   Start the server (default config: eguisyncd.yaml)
  start [config]   Alias for serve
  version          Show version
  help             Show this help

Signals:
  SIGINT/SIGTERM   Graceful shutdown
`)
}
