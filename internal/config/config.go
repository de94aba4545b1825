// Package config holds the deployment-tunable defaults and loads optional
// JSON overrides for NUMBER_OF_COBOS, EXPORTER_PORT, MM_IP_SUBNET,
// MAX_FRAME_CACHE and related topology/timing knobs. The GRAW wire-format
// constants (internal/constants) describe a fixed protocol, not a
// deployment, and are never overridable here.
package config

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/gwm17/attpc-conduit/internal/constants"
)

// FramingVariant selects which on-wire frame delimiting scheme the
// receivers use.
type FramingVariant string

const (
	// LengthPrefixed reads a little-endian u64 byte count then that many
	// bytes; this is preferred variant and the default.
	LengthPrefixed FramingVariant = "length_prefixed"
	// HeaderFirst reads EXPECTED_HEADER_SIZE*SIZE_UNIT bytes, decodes the
	// header, then reads header.frame_size*SIZE_UNIT more bytes. This is
	// the variant original_source/src/backend/exporter_receiver.rs uses.
	HeaderFirst FramingVariant = "header_first"
)

// Config is the full set of deployment knobs. Zero value is not valid;
// use Default().
type Config struct {
	NumberOfCobos      int           `json:"number_of_cobos"`
	ExporterPort       int           `json:"exporter_port"`
	MMIPSubnet         string        `json:"mm_ip_subnet"`
	MaxFrameCache      int           `json:"max_frame_cache"`
	ConnectTimeout     time.Duration `json:"connect_timeout_ms"`
	FrameQueueCapacity int           `json:"frame_queue_capacity"`
	EventQueueCapacity int           `json:"event_queue_capacity"`
	Framing            FramingVariant `json:"framing"`
}

// Default returns deployment-fixed defaults.
func Default() *Config {
	return &Config{
		NumberOfCobos:      constants.NumberOfCobos,
		ExporterPort:       constants.ExporterPort,
		MMIPSubnet:         constants.MMIPSubnet,
		MaxFrameCache:      constants.MaxFrameCache,
		ConnectTimeout:     120 * time.Second,
		FrameQueueCapacity: constants.FrameQueueCapacity,
		EventQueueCapacity: constants.EventQueueCapacity,
		Framing:            LengthPrefixed,
	}
}

// jsonConfig mirrors Config but with ConnectTimeout expressed in
// milliseconds, since time.Duration does not round-trip through JSON.
type jsonConfig struct {
	NumberOfCobos      *int            `json:"number_of_cobos"`
	ExporterPort       *int            `json:"exporter_port"`
	MMIPSubnet         *string         `json:"mm_ip_subnet"`
	MaxFrameCache      *int            `json:"max_frame_cache"`
	ConnectTimeoutMS   *int64          `json:"connect_timeout_ms"`
	FrameQueueCapacity *int            `json:"frame_queue_capacity"`
	EventQueueCapacity *int            `json:"event_queue_capacity"`
	Framing            *FramingVariant `json:"framing"`
}

// LoadOverrides reads a JSON file and applies any fields it sets on top
// of base. Fields the file omits are left untouched. A missing file is
// not an error: base is returned unchanged.
func LoadOverrides(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "config: read override file")
	}

	var overrides jsonConfig
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrap(err, "config: parse override file")
	}

	cfg := *base
	if overrides.NumberOfCobos != nil {
		cfg.NumberOfCobos = *overrides.NumberOfCobos
	}
	if overrides.ExporterPort != nil {
		cfg.ExporterPort = *overrides.ExporterPort
	}
	if overrides.MMIPSubnet != nil {
		cfg.MMIPSubnet = *overrides.MMIPSubnet
	}
	if overrides.MaxFrameCache != nil {
		cfg.MaxFrameCache = *overrides.MaxFrameCache
	}
	if overrides.ConnectTimeoutMS != nil {
		cfg.ConnectTimeout = time.Duration(*overrides.ConnectTimeoutMS) * time.Millisecond
	}
	if overrides.FrameQueueCapacity != nil {
		cfg.FrameQueueCapacity = *overrides.FrameQueueCapacity
	}
	if overrides.EventQueueCapacity != nil {
		cfg.EventQueueCapacity = *overrides.EventQueueCapacity
	}
	if overrides.Framing != nil {
		cfg.Framing = *overrides.Framing
	}
	return &cfg, nil
}

// ExporterAddr returns the dial address for receiver idx:
// {MM_IP_SUBNET}.{60+idx}:{EXPORTER_PORT}.
func (c *Config) ExporterAddr(idx int) string {
	return fmt.Sprintf("%s.%d:%d", c.MMIPSubnet, 60+idx, c.ExporterPort)
}
