// Package constants holds the deployment-fixed values: wire-format
// invariants the GRAW codec checks on every frame, and the
// network/topology defaults internal/config may override per deployment.
package constants

const (
	// SizeUnit is the unit (in bytes) that frame_size and header_size are
	// expressed in on the wire.
	SizeUnit = 256

	// ExpectedHeaderSize is the header size in SizeUnit units every GRAW
	// frame header must declare.
	ExpectedHeaderSize = 1

	// ExpectedMetaType is the only meta_type value this codec accepts.
	ExpectedMetaType = 6

	// Frame type discriminants.
	ExpectedFrameTypeFull = 1
	ExpectedFrameTypePartial = 2

	// Per-item sizes in bytes for each frame type's payload encoding.
	ExpectedItemSizeFull = 2
	ExpectedItemSizePartial = 6

	// NumberOfAget and NumberOfChannels bound a GrawDatum's coordinates
	// and give the dense layout used by FULL frames.
	NumberOfAget = 4
	NumberOfChannels = 68

	// NumberOfTimeBuckets bounds a GrawDatum's time_bucket_id and is the
	// fixed trace length for every pad in an Event.
	NumberOfTimeBuckets = 512

	// NumberOfMatrixColumns is the width of a converted event matrix:
	// 5 hardware-coordinate columns followed by one sample per time bucket.
	NumberOfMatrixColumns = 5 + NumberOfTimeBuckets

	// CoboWithTimestamp identifies the CoBo whose event_time is recorded
	// as an Event's timestampother (it runs in sync with the external DAQ).
	CoboWithTimestamp = 0

	// NumberOfCobos is the default receiver fan-out: one task per CoBo.
	NumberOfCobos = 10

	// MaxFrameCache is the default EventCache eviction threshold, measured
	// in resident frames (sum of nframes across all cached events).
	MaxFrameCache = 1000

	// ExporterPort is the default TCP port every data-exporter endpoint
	// listens on.
	ExporterPort = 8083

	// MMIPSubnet is the default /24 subnet; receiver idx dials
	// {MMIPSubnet}.{60+idx}:{ExporterPort}.
	MMIPSubnet = "192.168.1"

	// FrameQueueCapacity and EventQueueCapacity are the default bounded
	// channel sizes between receivers/builder and builder/consumer.
	FrameQueueCapacity = 40
	EventQueueCapacity = 40
)

// FPNChannels are the AGET channels that carry fixed pattern noise rather
// than physics signal, per the AGET electronics documentation. Kept for
// internal/event's opt-in DropFPNChannels.
var FPNChannels = [4]uint8{11, 22, 45, 56}
