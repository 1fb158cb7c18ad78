package render

import (
	"encoding/json"
	"fmt"
	"time"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/task"
)

const defaultHeartbeatSeconds = 30

// Settings describes one render. Every rank of a pool must be given the same settings.
type Settings struct {
	HeartbeatSeconds int
	OutputFile       string
	Strategy         task.Strategy
	Viewport         mandelbrot.Viewport
}

// NewSettings loads settings from a JSON file and fills in defaults
func NewSettings(settingsFile string) (Settings, error) {
	s, err := ReadSettings(settingsFile)
	if err != nil {
		return s, err
	}
	return s, s.Verify()
}

// ReadSettings loads settings without verifying them, for callers that override fields first
func ReadSettings(settingsFile string) (Settings, error) {
	var s Settings
	fileBytes, err := misc.ReadFile(settingsFile)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(fileBytes, &s)
	if err != nil {
		return s, fmt.Errorf("unable to parse %s - %w", settingsFile, err)
	}
	return s, nil
}

func (s *Settings) Heartbeat() time.Duration {
	return time.Duration(s.HeartbeatSeconds) * time.Second
}

func (s *Settings) String() string {
	output := "\nRender settings\n"
	output += fmt.Sprintf("Strategy: %s\n", s.Strategy)
	output += fmt.Sprintf("Output File: %s\n", s.OutputFile)
	output += fmt.Sprintf("Viewport: %s\n", s.Viewport)
	output += fmt.Sprintf("Heartbeat: %s\n", s.Heartbeat())
	return output
}

func (s *Settings) Verify() error {
	if s.Strategy < task.Sequential || s.Strategy > task.Decentralized {
		return fmt.Errorf("unknown strategy %s", s.Strategy)
	}
	if s.OutputFile == "" {
		s.OutputFile = s.Strategy.DefaultOutputFile()
	}
	if s.HeartbeatSeconds < 0 {
		return fmt.Errorf("heartbeat of %d seconds is negative", s.HeartbeatSeconds)
	}
	if s.HeartbeatSeconds == 0 {
		s.HeartbeatSeconds = defaultHeartbeatSeconds
	}
	return s.Viewport.Verify()
}
