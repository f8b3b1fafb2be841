package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/resume"
	"github.com/soocke/proctor-go/domain/session"
)

// Config holds runtime configuration for capture devices, the resume upload
// and the start policy. Fields may be loaded from a JSON file and overridden
// by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Camera
	CameraDevice string `json:"camera_device"`
	CameraWidth  int    `json:"camera_width"`
	CameraHeight int    `json:"camera_height"`
	CameraFacing string `json:"camera_facing"`
	CameraAudio  bool   `json:"camera_audio"`
	AudioDevice  string `json:"audio_device"`

	// Screen
	ScreenFrameIntervalMS int `json:"screen_frame_interval_ms"`
	ScreenMaxFailures     int `json:"screen_max_failures"`

	// Resume upload
	ResumeMaxBytes       int64  `json:"resume_max_bytes"`
	UploadURL            string `json:"upload_url"`
	UploadTimeoutSeconds int    `json:"upload_timeout_seconds"`
	UploadField          string `json:"upload_field"`

	StartPolicy string `json:"start_policy"`

	RouteLanding   string `json:"route_landing"`
	RouteQuestions string `json:"route_questions"`

	WindowTitle  string `json:"window_title"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		CameraDevice:          "/dev/video0",
		CameraWidth:           640,
		CameraHeight:          480,
		CameraFacing:          "user",
		CameraAudio:           true,
		AudioDevice:           "/dev/snd/pcmC0D0c",
		ScreenFrameIntervalMS: 200,
		ScreenMaxFailures:     5,
		ResumeMaxBytes:        resume.MaxBytes,
		UploadURL:             "http://localhost:3000/api/resume/upload",
		UploadTimeoutSeconds:  60,
		UploadField:           "file",
		StartPolicy:           session.PolicyStrict.String(),
		RouteLanding:          "/",
		RouteQuestions:        "/test/mcq",
		WindowTitle:           "Proctor",
		WindowWidth:           960,
		WindowHeight:          640,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.CameraDevice == "" {
		c.CameraDevice = d.CameraDevice
	}
	if c.CameraWidth < 0 {
		c.CameraWidth = 0
	}
	if c.CameraHeight < 0 {
		c.CameraHeight = 0
	}
	if c.CameraFacing == "" {
		c.CameraFacing = d.CameraFacing
	}
	if c.ScreenFrameIntervalMS < 20 {
		c.ScreenFrameIntervalMS = d.ScreenFrameIntervalMS
	}
	if c.ScreenMaxFailures <= 0 {
		c.ScreenMaxFailures = d.ScreenMaxFailures
	}
	if c.ResumeMaxBytes <= 0 || c.ResumeMaxBytes > resume.MaxBytes {
		c.ResumeMaxBytes = resume.MaxBytes
	}
	if c.UploadURL == "" {
		c.UploadURL = d.UploadURL
	}
	if c.UploadTimeoutSeconds <= 0 {
		c.UploadTimeoutSeconds = d.UploadTimeoutSeconds
	}
	if c.UploadField == "" {
		c.UploadField = d.UploadField
	}
	// Unknown values fall back to strict.
	c.StartPolicy = session.ParsePolicy(c.StartPolicy).String()
	if c.RouteLanding == "" {
		c.RouteLanding = d.RouteLanding
	}
	if c.RouteQuestions == "" {
		c.RouteQuestions = d.RouteQuestions
	}
	if c.WindowTitle == "" {
		c.WindowTitle = d.WindowTitle
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	return nil
}

// CameraConstraints returns the constraints passed to every camera request.
func (c *Config) CameraConstraints() media.Constraints {
	return media.Constraints{
		Width:      c.CameraWidth,
		Height:     c.CameraHeight,
		FacingMode: c.CameraFacing,
		Audio:      c.CameraAudio,
	}
}

func (c *Config) ScreenInterval() time.Duration {
	return time.Duration(c.ScreenFrameIntervalMS) * time.Millisecond
}

func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}

func (c *Config) Policy() session.Policy {
	return session.ParsePolicy(c.StartPolicy)
}

func (c *Config) Routes() session.Routes {
	return session.Routes{Landing: c.RouteLanding, Questions: c.RouteQuestions}
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
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
		return DefaultConfig(), err
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
