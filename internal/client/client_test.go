package client

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eguisync/eguisync/internal/config"
	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/registry"
	"github.com/eguisync/eguisync/internal/server"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestServerPeer(t *testing.T) (*server.Server, *registry.Registry, uint64) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.HandshakeTimeout = config.Duration(500 * time.Millisecond)

	reg := registry.New()
	sender := transport.NewSender()
	connected := &atomic.Bool{}
	dispatcher := dispatch.NewDispatcher(false)

	_, err := registry.RegisterValue(reg, "health", uint32(0), marshalU32, unmarshalU32, typeinfo.U32(), sender, connected, dispatcher)
	require.NoError(t, err)
	reg.Seal()

	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := server.New(cfg, reg, sender, connected, dispatcher, m, logger)
	val, _ := reg.Slot("health")
	updater := val.(interface{ ID() uint64 })
	return srv, reg, updater.ID()
}

func TestClientConnectsAndReceivesInitialSync(t *testing.T) {
	srv, _, id := newTestServerPeer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	reg := NewRegistry()
	sender := newTestSender()
	connected := connectedFlag(false)
	v, err := RegisterValue[uint32](reg, "health", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.NoError(t, err)
	require.Equal(t, id, v.ID())
	reg.Seal()

	repainted := make(chan struct{}, 16)
	cfg := Config{
		URL:             "ws" + strings.TrimPrefix(ts.URL, "http"),
		ProtocolVersion: 1,
		DialTimeout:     time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(cfg, reg, sender, connected, func(float64) { repainted <- struct{}{} }, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Connect()

	require.Eventually(t, func() bool {
		return c.State() == Connected
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		got, _ := v.Get()
		return got == 0
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-repainted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected at least one repaint request after connecting")
	}
}

func TestClientStateStringsAreStable(t *testing.T) {
	require.Equal(t, "not_connected", NotConnected.String())
	require.Equal(t, "connected", Connected.String())
	require.Equal(t, "disconnected", Disconnected.String())
}
