package config

import (
	"encoding/json"
	"image"
	"os"
)

// Config holds runtime configuration for capture and snapshot behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Capture target. A nil Monitor selects the primary display.
	Monitor *int `json:"monitor"`

	// Acquisition parameters
	AcquireTimeoutMS   int `json:"acquire_timeout_ms"`
	SnapshotIntervalMS int `json:"snapshot_interval_ms"`

	// Snapshot output
	OutputDir   string `json:"output_dir"`
	ImageFormat string `json:"image_format"` // png, jpg or bmp
	PreviewMaxW int    `json:"preview_max_w"`
	PreviewMaxH int    `json:"preview_max_h"`

	// Capture sub-rectangle; zero width or height captures the full monitor.
	RegionX int `json:"region_x"`
	RegionY int `json:"region_y"`
	RegionW int `json:"region_w"`
	RegionH int `json:"region_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		Monitor:            nil,
		AcquireTimeoutMS:   16,
		SnapshotIntervalMS: 1000,
		OutputDir:          "snapshots",
		ImageFormat:        "png",
		PreviewMaxW:        320,
		PreviewMaxH:        240,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.AcquireTimeoutMS <= 0 {
		c.AcquireTimeoutMS = 16
	}
	if c.SnapshotIntervalMS <= 0 {
		c.SnapshotIntervalMS = 1000
	}
	switch c.ImageFormat {
	case "png", "jpg", "jpeg", "bmp":
	default:
		c.ImageFormat = "png"
	}
	if c.OutputDir == "" {
		c.OutputDir = "snapshots"
	}
	if c.PreviewMaxW < 1 {
		c.PreviewMaxW = 320
	}
	if c.PreviewMaxH < 1 {
		c.PreviewMaxH = 240
	}
	if c.RegionW < 0 {
		c.RegionW = 0
	}
	if c.RegionH < 0 {
		c.RegionH = 0
	}
	return nil
}

// CaptureRegion returns the configured capture sub-rectangle, or nil when
// the full monitor area should be captured.
func (c *Config) CaptureRegion() *image.Rectangle {
	if c.RegionW <= 0 || c.RegionH <= 0 {
		return nil
	}
	r := image.Rect(c.RegionX, c.RegionY, c.RegionX+c.RegionW, c.RegionY+c.RegionH)
	return &r
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). On JSON error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
