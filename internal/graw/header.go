// Package graw decodes the length-prefixed binary GRAW frame format
// produced by the GET DAQ electronics.
package graw

import (
	"encoding/binary"

	"github.com/gwm17/attpc-conduit/internal/constants"
)

const (
	expectedMetaType         = constants.ExpectedMetaType
	expectedFrameTypeFull    = constants.ExpectedFrameTypeFull
	expectedFrameTypePartial = constants.ExpectedFrameTypePartial
	expectedHeaderSize       = constants.ExpectedHeaderSize
	expectedItemSizeFull     = constants.ExpectedItemSizeFull
	expectedItemSizePartial  = constants.ExpectedItemSizePartial
	sizeUnit                 = constants.SizeUnit

	// headerLayoutSize is the number of bytes this decoder actually reads
	// out of the EXPECTED_HEADER_SIZE*SIZE_UNIT header buffer; the
	// remainder is reserved space in the real GET header this system does
	// not need.
	headerLayoutSize = 29

	numberOfChannels    = constants.NumberOfChannels
	numberOfTimeBuckets = constants.NumberOfTimeBuckets
)

// Header is the fixed-layout record at the front of every GRAW frame.
type Header struct {
	MetaType   uint8
	FrameSize  uint32 // in SizeUnit units
	FrameType  uint16
	HeaderSize uint16 // in SizeUnit units
	ItemSize   uint16 // in bytes
	NItems     uint32
	EventID    uint32
	EventTime  uint64
	CoboID     uint8
	AsadID     uint8
}

// DecodeHeader validates and parses a header buffer of exactly
// EXPECTED_HEADER_SIZE*SIZE_UNIT bytes, checking fields in a fail-fast
// order: meta_type, frame_type, header_size, item_size.
func DecodeHeader(buf []byte) (Header, error) {
	const want = expectedHeaderSize * sizeUnit
	if len(buf) != want {
		return Header{}, incorrectFrameSize(uint32(want), uint32(len(buf)))
	}

	var h Header
	h.MetaType = buf[0]
	if uint32(h.MetaType) != expectedMetaType {
		return Header{}, incorrectMetaType(h.MetaType)
	}

	h.FrameSize = binary.LittleEndian.Uint32(buf[1:5])
	h.FrameType = binary.LittleEndian.Uint16(buf[5:7])
	if h.FrameType != expectedFrameTypeFull && h.FrameType != expectedFrameTypePartial {
		return Header{}, incorrectFrameType(h.FrameType)
	}

	h.HeaderSize = binary.LittleEndian.Uint16(buf[7:9])
	if uint32(h.HeaderSize) != expectedHeaderSize {
		return Header{}, incorrectHeaderSize(h.HeaderSize)
	}

	h.ItemSize = binary.LittleEndian.Uint16(buf[9:11])
	wantItemSize := uint16(expectedItemSizeFull)
	if h.FrameType == expectedFrameTypePartial {
		wantItemSize = expectedItemSizePartial
	}
	if h.ItemSize != wantItemSize {
		return Header{}, incorrectItemSize(h.ItemSize)
	}

	h.NItems = binary.LittleEndian.Uint32(buf[11:15])
	h.EventID = binary.LittleEndian.Uint32(buf[15:19])
	h.EventTime = binary.LittleEndian.Uint64(buf[19:27])
	h.CoboID = buf[27]
	h.AsadID = buf[28]

	return h, nil
}
