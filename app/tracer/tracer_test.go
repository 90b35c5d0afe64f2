package tracer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServeMetricsPortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		serveMetrics(ln.Addr().String())
		close(done)
	}()

	select {
	case <-done:
		// The bind failure is logged and the process keeps running.
	case <-time.After(2 * time.Second):
		t.Fatal("serveMetrics did not return after failing to bind")
	}
}
