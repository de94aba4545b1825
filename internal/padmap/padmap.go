// Package padmap loads and serves the read-only mapping from GET
// electronics coordinates to AT-TPC pad identity.
package padmap

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gwm17/attpc-conduit/internal/fastmap"
)

// HWCoord is the part of a HardwareID that participates in equality and
// hashing: pad_id is derived and excluded.
type HWCoord struct {
	Cobo    uint8
	Asad    uint8
	Aget    uint8
	Channel uint8
}

func (c HWCoord) bytes() []byte {
	return []byte{c.Cobo, c.Asad, c.Aget, c.Channel}
}

// HardwareID is the immutable 4+1 tuple identifying one electronics
// channel and the pad it reads out.
type HardwareID struct {
	HWCoord
	PadID uint16
}

// PadMap is an immutable lookup from hardware coordinates to HardwareID,
// loaded once and shared read-only for the process lifetime.
type PadMap struct {
	table *fastmap.Map[HWCoord, HardwareID]
}

// Lookup returns the HardwareID for the given coordinates. Absent entries
// are not an error: the caller (Event.AppendFrame) silently drops the
// affected datum.
func (p *PadMap) Lookup(cobo, asad, aget, channel uint8) (HardwareID, bool) {
	return p.table.Get(HWCoord{Cobo: cobo, Asad: asad, Aget: aget, Channel: channel})
}

// Len returns the number of loaded mappings.
func (p *PadMap) Len() int { return p.table.Len() }

// Error is the PadMap error taxonomy: IOError,
// ParsingError, BadFileFormat.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "padmap: " + e.Kind + ": " + e.Err.Error()
	}
	return "padmap: " + e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

func ioError(err error) error      { return &Error{Kind: "IOError", Err: err} }
func parsingError(err error) error { return &Error{Kind: "ParsingError", Err: err} }
func badFormat() error             { return &Error{Kind: "BadFileFormat"} }

// Load reads a PadMap from a comma-separated text file, one record per
// line, fields "cobo,asad,aget,channel,pad_id" with no whitespace and no
// extra columns.
func Load(path string) (*PadMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ioError(err), "open pad map file")
	}
	defer f.Close()

	table := fastmap.New[HWCoord, HardwareID](func(c HWCoord) []byte { return c.bytes() })

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line != strings.TrimSpace(line) {
			return nil, errors.Wrapf(badFormat(), "line %d: leading/trailing whitespace", lineNo)
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, errors.Wrapf(badFormat(), "line %d: expected 5 fields, found %d", lineNo, len(fields))
		}
		for _, field := range fields {
			if field != strings.TrimSpace(field) {
				return nil, errors.Wrapf(badFormat(), "line %d: whitespace in field %q", lineNo, field)
			}
		}

		cobo, err := parseU8(fields[0])
		if err != nil {
			return nil, errors.Wrapf(parsingError(err), "line %d: cobo", lineNo)
		}
		asad, err := parseU8(fields[1])
		if err != nil {
			return nil, errors.Wrapf(parsingError(err), "line %d: asad", lineNo)
		}
		aget, err := parseU8(fields[2])
		if err != nil {
			return nil, errors.Wrapf(parsingError(err), "line %d: aget", lineNo)
		}
		channel, err := parseU8(fields[3])
		if err != nil {
			return nil, errors.Wrapf(parsingError(err), "line %d: channel", lineNo)
		}
		padID, err := strconv.ParseUint(fields[4], 10, 16)
		if err != nil {
			return nil, errors.Wrapf(parsingError(err), "line %d: pad_id", lineNo)
		}

		coord := HWCoord{Cobo: cobo, Asad: asad, Aget: aget, Channel: channel}
		table.Set(coord, HardwareID{HWCoord: coord, PadID: uint16(padID)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(ioError(err), "scan pad map file")
	}

	return &PadMap{table: table}, nil
}

func parseU8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
