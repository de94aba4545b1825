package receiver

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/gwm17/attpc-conduit/internal/constants"
)

func buildFullFrame(t *testing.T) []byte {
	t.Helper()
	body := make([]byte, 2)
	binary.LittleEndian.PutUint16(body, uint16(int16(9)))

	headerLen := constants.ExpectedHeaderSize * constants.SizeUnit
	total := headerLen + len(body)
	frameSize := uint32(total / constants.SizeUnit)
	if total%constants.SizeUnit != 0 {
		frameSize++
	}

	header := make([]byte, headerLen)
	header[0] = constants.ExpectedMetaType
	binary.LittleEndian.PutUint32(header[1:5], frameSize)
	binary.LittleEndian.PutUint16(header[5:7], constants.ExpectedFrameTypeFull)
	binary.LittleEndian.PutUint16(header[7:9], constants.ExpectedHeaderSize)
	binary.LittleEndian.PutUint16(header[9:11], constants.ExpectedItemSizeFull)
	binary.LittleEndian.PutUint32(header[11:15], 1)
	binary.LittleEndian.PutUint32(header[15:19], 77)
	binary.LittleEndian.PutUint64(header[19:27], 555)
	header[27] = 0
	header[28] = 0

	full := append(append([]byte{}, header...), body...)
	for uint32(len(full)) < frameSize*constants.SizeUnit {
		full = append(full, 0)
	}
	return full
}

func TestLengthPrefixedFramer_ReadsOneFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	full := buildFullFrame(t)
	go func() {
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(full)))
		server.Write(lenBuf[:])
		server.Write(full)
	}()

	framer := LengthPrefixedFramer{}
	client.SetDeadline(time.Now().Add(2 * time.Second))
	frame, err := framer.ReadFrame(client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Header.EventID != 77 {
		t.Fatalf("expected event id 77, got %d", frame.Header.EventID)
	}
}

func TestLengthPrefixedFramer_ZeroLengthIsSpurious(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		var lenBuf [8]byte // all zero
		server.Write(lenBuf[:])
	}()

	framer := LengthPrefixedFramer{}
	client.SetDeadline(time.Now().Add(2 * time.Second))
	_, err := framer.ReadFrame(client)
	if err != ErrSpuriousRead {
		t.Fatalf("expected ErrSpuriousRead, got %v", err)
	}
}

func TestHeaderFirstFramer_ReadsOneFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	full := buildFullFrame(t)
	go func() {
		server.Write(full)
	}()

	framer := HeaderFirstFramer{}
	client.SetDeadline(time.Now().Add(2 * time.Second))
	frame, err := framer.ReadFrame(client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Header.EventID != 77 {
		t.Fatalf("expected event id 77, got %d", frame.Header.EventID)
	}
}
