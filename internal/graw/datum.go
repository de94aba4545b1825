package graw

import "github.com/gwm17/attpc-conduit/internal/constants"

// Datum is one (aget, channel, time_bucket, sample) sample, the unit of
// payload in every GRAW frame.
type Datum struct {
	AgetID     uint8
	Channel    uint8
	TimeBucket uint16
	Sample     int16
}

func newDatum(aget, channel uint8, timeBucket uint16, sample int16) (Datum, error) {
	if aget >= constants.NumberOfAget {
		return Datum{}, badAgetID(aget)
	}
	if channel >= constants.NumberOfChannels {
		return Datum{}, badChannel(channel)
	}
	if timeBucket >= constants.NumberOfTimeBuckets {
		return Datum{}, badTimeBucket(timeBucket)
	}
	return Datum{AgetID: aget, Channel: channel, TimeBucket: timeBucket, Sample: sample}, nil
}
