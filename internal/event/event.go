// Package event implements Event, the sparse per-pad trace container
// assembled from frames sharing an event id.
package event

import (
	"fmt"

	"github.com/gwm17/attpc-conduit/internal/constants"
	"github.com/gwm17/attpc-conduit/internal/fastmap"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

// MismatchedEventIDError is returned by AppendFrame when a frame's
// event id does not match the event it is being appended to.
type MismatchedEventIDError struct {
	Given, Expected uint32
}

func (e *MismatchedEventIDError) Error() string {
	return fmt.Sprintf("event: mismatched event id: given %d, expected %d", e.Given, e.Expected)
}

type trace struct {
	id     padmap.HardwareID
	values [constants.NumberOfTimeBuckets]int16
}

// Event is the logical aggregate of all frames sharing one event id
// across all CoBos.
type Event struct {
	eventID        uint32
	nframes        int32
	timestamp      uint64
	timestampother uint64
	traces         *fastmap.Map[padmap.HWCoord, *trace]
}

// New creates an empty Event. Its event id is fixed by the first frame
// appended to it.
func New() *Event {
	return &Event{
		traces: fastmap.New[padmap.HWCoord, *trace](func(c padmap.HWCoord) []byte {
			return []byte{c.Cobo, c.Asad, c.Aget, c.Channel}
		}),
	}
}

// EventID returns the event id this Event was created under.
func (e *Event) EventID() uint32 { return e.eventID }

// NFrames returns the number of frames appended so far; this is the unit
// EventCache.Size() accounts in.
func (e *Event) NFrames() int { return int(e.nframes) }

// AppendFrame merges one decoded frame into the event.
//
// First-writer-wins timestamp capture is the variant this implementation
// follows (see DESIGN.md): the first frame from COBO_WITH_TIMESTAMP sets
// timestampother, and the first frame from any other CoBo sets timestamp;
// later frames from the same role never overwrite them.
func (e *Event) AppendFrame(pads *padmap.PadMap, frame graw.Frame) error {
	if e.nframes == 0 {
		e.eventID = frame.Header.EventID
	} else if e.eventID != frame.Header.EventID {
		return &MismatchedEventIDError{Given: frame.Header.EventID, Expected: e.eventID}
	}

	if uint32(frame.Header.CoboID) == constants.CoboWithTimestamp {
		if e.timestampother == 0 {
			e.timestampother = frame.Header.EventTime
		}
	} else if e.timestamp == 0 {
		e.timestamp = frame.Header.EventTime
	}

	for _, datum := range frame.Data {
		hw, ok := pads.Lookup(frame.Header.CoboID, frame.Header.AsadID, datum.AgetID, datum.Channel)
		if !ok {
			continue
		}
		t, found := e.traces.Get(hw.HWCoord)
		if !found {
			t = &trace{id: hw}
			e.traces.Set(hw.HWCoord, t)
		}
		t.values[datum.TimeBucket] = datum.Sample
	}

	e.nframes++
	return nil
}

// Timestamp returns the captured event_time from a non-timestamp CoBo.
func (e *Event) Timestamp() uint64 { return e.timestamp }

// TimestampOther returns the captured event_time from COBO_WITH_TIMESTAMP.
func (e *Event) TimestampOther() uint64 { return e.timestampother }

// Matrix is a dense [n_traces, NUMBER_OF_MATRIX_COLUMNS] i16 array: each
// row is one trace, columns 0-4 are hardware coordinates and columns
// 5..NUMBER_OF_MATRIX_COLUMNS are the trace samples.
type Matrix struct {
	Rows, Cols int
	Data       []int16
}

// At returns the value at (row, col).
func (m *Matrix) At(row, col int) int16 { return m.Data[row*m.Cols+col] }

// Row returns a slice view of one row.
func (m *Matrix) Row(row int) []int16 { return m.Data[row*m.Cols : (row+1)*m.Cols] }

// ToMatrix converts the event's traces into a dense matrix. Row order is
// arbitrary (reflects hash iteration order), matching the hardware ids
// that happened to receive a sample rather than a fixed pad ordering.
func (e *Event) ToMatrix() Matrix {
	cols := constants.NumberOfMatrixColumns
	m := Matrix{Rows: e.traces.Len(), Cols: cols, Data: make([]int16, e.traces.Len()*cols)}

	row := 0
	e.traces.Range(func(_ padmap.HWCoord, t *trace) bool {
		r := m.Row(row)
		r[0] = int16(t.id.Cobo)
		r[1] = int16(t.id.Asad)
		r[2] = int16(t.id.Aget)
		r[3] = int16(t.id.Channel)
		r[4] = int16(t.id.PadID)
		copy(r[5:], t.values[:])
		row++
		return true
	})

	return m
}

// DropFPNChannels removes the traces of the fixed-pattern-noise channels
// (constants.FPNChannels) of the one AGET identified by cobo, asad and
// aget; FPN traces of other AGETs are left in place. It is a feature carried over from the
// original implementation (event.rs); it is opt-in and never called
// automatically by the builder, since the matrix contract includes every
// hardware id that received a sample.
func (e *Event) DropFPNChannels(pads *padmap.PadMap, cobo, asad, aget uint8) {
	for _, ch := range constants.FPNChannels {
		if hw, ok := pads.Lookup(cobo, asad, aget, ch); ok {
			e.traces.Delete(hw.HWCoord)
		}
	}
}
