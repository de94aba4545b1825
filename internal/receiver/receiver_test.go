package receiver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gwm17/attpc-conduit/internal/graw"
)

func TestRun_CancellationUnblocksReadLoop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		close(accepted)
		// never writes anything; Run should block in ReadFrame until cancelled
		buf := make([]byte, 1)
		conn.Read(buf)
	}()

	sink := make(chan graw.Frame, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, ln.Addr().String(), 2*time.Second, LengthPrefixedFramer{}, sink)
	}()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection to be accepted")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected Run to return nil on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Run to exit after cancellation")
	}
}

func TestRun_ConnectFailureReturnsError(t *testing.T) {
	ctx := context.Background()
	sink := make(chan graw.Frame, 1)

	// nothing listening on this port
	err := Run(ctx, "127.0.0.1:1", 200*time.Millisecond, LengthPrefixedFramer{}, sink)
	if err == nil {
		t.Fatal("expected an error connecting to an unreachable address")
	}
}
