package graw

import "encoding/binary"

// Frame is a decoded GRAW frame: its header plus the data items it
// carried.
type Frame struct {
	Header Header
	Data   []Datum
}

// DecodeBody validates the frame's total declared size against the full
// on-wire buffer length, then decodes body (the bytes following the
// header) into Data per header.FrameType's payload encoding.
func DecodeBody(header Header, fullBuf []byte, body []byte) (Frame, error) {
	declaredBytes := header.FrameSize * sizeUnit
	if declaredBytes != uint32(len(fullBuf)) {
		return Frame{}, incorrectFrameSize(declaredBytes, uint32(len(fullBuf)))
	}

	var data []Datum
	var err error
	switch header.FrameType {
	case expectedFrameTypeFull:
		data, err = decodeFull(header, body)
	default: // expectedFrameTypePartial, already validated in DecodeHeader
		data, err = decodePartial(header, body)
	}
	if err != nil {
		return Frame{}, err
	}

	return Frame{Header: header, Data: data}, nil
}

// Decode decodes a complete GRAW frame from a single contiguous buffer
// containing header followed by body.
func Decode(buf []byte) (Frame, error) {
	headerBytes := expectedHeaderSize * sizeUnit
	if len(buf) < headerBytes {
		return Frame{}, incorrectFrameSize(uint32(headerBytes), uint32(len(buf)))
	}
	header, err := DecodeHeader(buf[:headerBytes])
	if err != nil {
		return Frame{}, err
	}
	return DecodeBody(header, buf, buf[headerBytes:])
}

// decodeFull decodes a FULL frame's dense, positionally-implied payload:
// n_items equals NumberOfAget*NumberOfChannels*NumberOfTimeBuckets, one
// EXPECTED_ITEM_SIZE_FULL-byte sample per item, ordered
// (aget, channel, time_bucket).
func decodeFull(header Header, body []byte) ([]Datum, error) {
	itemSize := int(header.ItemSize)
	n := int(header.NItems)
	if len(body) < n*itemSize {
		return nil, incorrectFrameSize(uint32(n*itemSize), uint32(len(body)))
	}

	channelsPerAget := int(channelCount())
	bucketsPerChannel := int(bucketCount())
	data := make([]Datum, 0, n)
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(body[i*itemSize : i*itemSize+itemSize]))
		aget := uint8(i / (channelsPerAget * bucketsPerChannel))
		rem := i % (channelsPerAget * bucketsPerChannel)
		channel := uint8(rem / bucketsPerChannel)
		timeBucket := uint16(rem % bucketsPerChannel)

		datum, err := newDatum(aget, channel, timeBucket, sample)
		if err != nil {
			return nil, badDatum(err)
		}
		data = append(data, datum)
	}
	return data, nil
}

// decodePartial decodes a PARTIAL frame's sparse, self-describing
// payload: each item is (aget_id, channel, time_bucket_id, sample).
func decodePartial(header Header, body []byte) ([]Datum, error) {
	itemSize := int(header.ItemSize)
	n := int(header.NItems)
	if len(body) < n*itemSize {
		return nil, incorrectFrameSize(uint32(n*itemSize), uint32(len(body)))
	}

	data := make([]Datum, 0, n)
	for i := 0; i < n; i++ {
		item := body[i*itemSize : i*itemSize+itemSize]
		aget := item[0]
		channel := item[1]
		timeBucket := binary.LittleEndian.Uint16(item[2:4])
		sample := int16(binary.LittleEndian.Uint16(item[4:6]))

		datum, err := newDatum(aget, channel, timeBucket, sample)
		if err != nil {
			return nil, badDatum(err)
		}
		data = append(data, datum)
	}
	return data, nil
}

func channelCount() uint8  { return numberOfChannels }
func bucketCount() uint16 { return numberOfTimeBuckets }
