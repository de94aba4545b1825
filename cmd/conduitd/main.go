// Command conduitd runs a Conduit against a configured set of CoBo
// exporter endpoints and logs each finished event as it arrives.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwm17/attpc-conduit/conduit"
	"github.com/gwm17/attpc-conduit/internal/config"
	"github.com/gwm17/attpc-conduit/internal/logging"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

func main() {
	padMapPath := flag.String("padmap", "padmap.csv", "path to the pad map CSV file")
	configPath := flag.String("config", "", "path to an optional JSON config override file")
	cacheSize := flag.Int("cache-size", 0, "event cache frame budget (0 uses the deployment default)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		if err := logging.SetLevel("debug"); err != nil {
			logging.Errorf("conduitd: setting log level: %v", err)
		}
	}

	cfg := config.Default()
	if *configPath != "" {
		overridden, err := config.LoadOverrides(*configPath, cfg)
		if err != nil {
			logging.Errorf("conduitd: loading config overrides: %v", err)
			os.Exit(1)
		}
		cfg = overridden
	}

	maxCacheSize := *cacheSize
	if maxCacheSize <= 0 {
		maxCacheSize = cfg.MaxFrameCache
	}

	pads, err := padmap.Load(*padMapPath)
	if err != nil {
		logging.Errorf("conduitd: loading pad map: %v", err)
		os.Exit(1)
	}
	logging.Infof("conduitd: loaded %d pad mappings", pads.Len())

	c := conduit.New(cfg, pads)
	if err := c.Connect(maxCacheSize); err != nil {
		logging.Errorf("conduitd: connect: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logging.Infof("conduitd: shutdown signal received")
			if err := c.Disconnect(); err != nil {
				logging.Errorf("conduitd: disconnect: %v", err)
				os.Exit(1)
			}
			return
		case <-ticker.C:
			for {
				id, matrix, ok := c.PollEvents()
				if !ok {
					break
				}
				logging.Infof("conduitd: event %d ready, %d traces", id, matrix.Rows)
			}
		}
	}
}
