package receiver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gwm17/attpc-conduit/internal/constants"
	"github.com/gwm17/attpc-conduit/internal/graw"
)

// ErrSpuriousRead is returned by a Framer when it reads a zero-length
// length prefix, which is treated as a spurious readiness signal rather
// than a frame: the caller should retry the read, not treat it as an
// error or as data.
var ErrSpuriousRead = errors.New("receiver: spurious zero-length read")

// Framer reads exactly one GRAW frame off conn. Implementations own their
// own delimiting strategy; see LengthPrefixedFramer and HeaderFirstFramer.
type Framer interface {
	ReadFrame(conn net.Conn) (graw.Frame, error)
}

// LengthPrefixedFramer reads a little-endian u64 byte count followed by
// that many bytes of a complete GRAW frame (header + body). This is the
// preferred framing variant and internal/config's default.
type LengthPrefixedFramer struct{}

func (LengthPrefixedFramer) ReadFrame(conn net.Conn) (graw.Frame, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return graw.Frame{}, ioError(err)
	}

	n := binary.LittleEndian.Uint64(lenBuf[:])
	if n == 0 {
		return graw.Frame{}, ErrSpuriousRead
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return graw.Frame{}, ioError(err)
	}

	frame, err := graw.Decode(buf)
	if err != nil {
		return graw.Frame{}, badFrameError(err)
	}
	return frame, nil
}

// HeaderFirstFramer reads EXPECTED_HEADER_SIZE*SIZE_UNIT bytes, decodes
// the header to learn the frame's total declared size, then reads the
// remaining body bytes. This mirrors how original_source's
// exporter_receiver.rs/ecc_reciever.rs frame their stream, without any
// length prefix ahead of the header.
type HeaderFirstFramer struct{}

func (HeaderFirstFramer) ReadFrame(conn net.Conn) (graw.Frame, error) {
	headerBuf := make([]byte, constants.ExpectedHeaderSize*constants.SizeUnit)
	if _, err := io.ReadFull(conn, headerBuf); err != nil {
		return graw.Frame{}, ioError(err)
	}

	header, err := graw.DecodeHeader(headerBuf)
	if err != nil {
		return graw.Frame{}, badFrameError(err)
	}

	declaredBytes := header.FrameSize * constants.SizeUnit
	if declaredBytes < uint32(len(headerBuf)) {
		return graw.Frame{}, badFrameError(fmt.Errorf("declared frame size %d bytes is smaller than the header itself (%d bytes)", declaredBytes, len(headerBuf)))
	}

	body := make([]byte, declaredBytes-uint32(len(headerBuf)))
	if len(body) > 0 {
		if _, err := io.ReadFull(conn, body); err != nil {
			return graw.Frame{}, ioError(err)
		}
	}

	fullBuf := make([]byte, 0, len(headerBuf)+len(body))
	fullBuf = append(fullBuf, headerBuf...)
	fullBuf = append(fullBuf, body...)

	frame, err := graw.DecodeBody(header, fullBuf, body)
	if err != nil {
		return graw.Frame{}, badFrameError(err)
	}
	return frame, nil
}
