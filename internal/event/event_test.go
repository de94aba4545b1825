package event

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

func loadTestPads(t *testing.T) *padmap.PadMap {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "padmap.csv")
	content := "0,0,0,0,1\n1,0,0,0,2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing pad map: %v", err)
	}
	pads, err := padmap.Load(path)
	if err != nil {
		t.Fatalf("loading pad map: %v", err)
	}
	return pads
}

func frameFor(eventID uint32, cobo uint8, eventTime uint64, samples map[uint16]int16) graw.Frame {
	data := make([]graw.Datum, 0, len(samples))
	for tb, sample := range samples {
		data = append(data, graw.Datum{AgetID: 0, Channel: 0, TimeBucket: tb, Sample: sample})
	}
	return graw.Frame{
		Header: graw.Header{
			EventID:   eventID,
			EventTime: eventTime,
			CoboID:    cobo,
			AsadID:    0,
		},
		Data: data,
	}
}

func TestAppendFrame_FirstFrameSetsEventID(t *testing.T) {
	pads := loadTestPads(t)
	ev := New()

	frame := frameFor(5, 0, 1000, map[uint16]int16{0: 42})
	if err := ev.AppendFrame(pads, frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.EventID() != 5 {
		t.Fatalf("expected event id 5, got %d", ev.EventID())
	}
	if ev.NFrames() != 1 {
		t.Fatalf("expected 1 frame, got %d", ev.NFrames())
	}
}

func TestAppendFrame_MismatchedEventIDIsRejected(t *testing.T) {
	pads := loadTestPads(t)
	ev := New()

	if err := ev.AppendFrame(pads, frameFor(5, 0, 1000, map[uint16]int16{0: 1})); err != nil {
		t.Fatalf("unexpected error on first frame: %v", err)
	}

	err := ev.AppendFrame(pads, frameFor(6, 0, 1001, map[uint16]int16{0: 2}))
	if err == nil {
		t.Fatal("expected a mismatched event id error")
	}
	mismatch, ok := err.(*MismatchedEventIDError)
	if !ok {
		t.Fatalf("expected *MismatchedEventIDError, got %T", err)
	}
	if mismatch.Given != 6 || mismatch.Expected != 5 {
		t.Fatalf("unexpected mismatch fields: %+v", mismatch)
	}
	// the rejected frame must not have been counted
	if ev.NFrames() != 1 {
		t.Fatalf("expected rejected frame to leave NFrames unchanged, got %d", ev.NFrames())
	}
}

func TestAppendFrame_FirstWriterWinsTimestamp(t *testing.T) {
	pads := loadTestPads(t)
	ev := New()

	if err := ev.AppendFrame(pads, frameFor(1, 1, 100, map[uint16]int16{0: 1})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ev.AppendFrame(pads, frameFor(1, 1, 200, map[uint16]int16{1: 2})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ev.Timestamp() != 100 {
		t.Fatalf("expected first-writer timestamp 100, got %d", ev.Timestamp())
	}
}

func TestToMatrix_ProducesOneRowPerTrace(t *testing.T) {
	pads := loadTestPads(t)
	ev := New()

	if err := ev.AppendFrame(pads, frameFor(1, 0, 100, map[uint16]int16{0: 7, 1: 8})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := ev.ToMatrix()
	if m.Rows != 1 {
		t.Fatalf("expected 1 row (single hardware coordinate), got %d", m.Rows)
	}
	if m.At(0, 5) != 7 || m.At(0, 6) != 8 {
		t.Fatalf("unexpected trace samples in row 0: %v", m.Row(0))
	}
}

func TestAppendFrame_DropsSamplesForUnmappedHardware(t *testing.T) {
	pads := loadTestPads(t)
	ev := New()

	frame := graw.Frame{
		Header: graw.Header{EventID: 1, EventTime: 1, CoboID: 9, AsadID: 9},
		Data:   []graw.Datum{{AgetID: 0, Channel: 0, TimeBucket: 0, Sample: 1}},
	}
	if err := ev.AppendFrame(pads, frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ToMatrix().Rows != 0 {
		t.Fatalf("expected no traces for an unmapped hardware coordinate")
	}
}
