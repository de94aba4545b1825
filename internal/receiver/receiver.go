// Package receiver implements the Receiver task: one goroutine per CoBo
// exporter endpoint, dialing its TCP socket, framing and decoding GRAW
// frames off the wire, and forwarding them to the EventBuilder's frame
// channel.
package receiver

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gwm17/attpc-conduit/internal/config"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/logging"
)

// FramerFor returns the Framer the given config selects.
func FramerFor(variant config.FramingVariant) Framer {
	if variant == config.HeaderFirst {
		return HeaderFirstFramer{}
	}
	return LengthPrefixedFramer{}
}

func resolveAddr(addr string) (*net.TCPAddr, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, addressParseError(err)
	}
	return tcpAddr, nil
}

// Run dials addr with connectTimeout, then reads frames with framer and
// forwards them to sink until ctx is cancelled, the connection fails, or
// a frame fails to decode. A cancelled context unblocks the in-flight
// read by closing the connection, the idiomatic way to cancel a blocking
// net.Conn.Read; this ends the loop with a nil error rather than an I/O
// error, since the cancellation was requested, not a stream fault.
func Run(ctx context.Context, addr string, connectTimeout time.Duration, framer Framer, sink chan<- graw.Frame) error {
	tcpAddr, err := resolveAddr(addr)
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", tcpAddr.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return connectTimeoutError(err)
	}
	defer conn.Close()

	logging.Infof("receiver connected to %s", addr)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := framer.ReadFrame(conn)
		if err != nil {
			if errors.Is(err, ErrSpuriousRead) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logging.Errorf("receiver %s: %v", addr, err)
			return err
		}

		select {
		case sink <- frame:
		case <-ctx.Done():
			return nil
		}
	}
}

// SpawnAll starts one Run goroutine per cfg.NumberOfCobos exporter
// endpoint under g, returning once every receiver goroutine has been
// registered. g must be a plain errgroup.Group (not errgroup.WithContext):
// one receiver's failure to connect or decode must not cancel ctx for its
// siblings, per the spec's "pipeline continues with the remaining
// receivers" policy. g.Wait() still surfaces the first non-nil error
// for the caller to classify and log.
func SpawnAll(ctx context.Context, g *errgroup.Group, cfg *config.Config, sink chan<- graw.Frame) {
	framer := FramerFor(cfg.Framing)
	for i := 0; i < cfg.NumberOfCobos; i++ {
		addr := cfg.ExporterAddr(i)
		g.Go(func() error {
			return Run(ctx, addr, cfg.ConnectTimeout, framer, sink)
		})
	}
}
