// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides loading and validation of flick configuration
// files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/flick/internal/xdg"
)

// Name is the path of the configuration file relative to the XDG
// configuration directories.
const Name = "flick/config.toml"

// Config is the flick configuration. Nil and zero fields are unset.
type Config struct {
	// Decoder is the decoder variant: "auto", "image" or "codec".
	Decoder string `json:"decoder,omitempty" toml:"decoder"`

	// Iterations overrides the container's loop count. Zero is
	// infinite.
	Iterations *int `json:"iterations,omitempty" toml:"iterations"`

	// MaxFrameRate is the maximum playback tick rate in frames
	// per second.
	MaxFrameRate *float64 `json:"max_frame_rate,omitempty" toml:"max_frame_rate"`

	// MinFrameDuration is the shortest frame duration retained
	// by the codec decoder.
	MinFrameDuration *Duration `json:"min_frame_duration,omitempty" toml:"min_frame_duration"`

	Fit *Fit `json:"fit,omitempty" toml:"fit"`

	// Invert renders light pixels as dots.
	Invert *bool `json:"invert,omitempty" toml:"invert"`

	LogLevel     *slog.Level `json:"log_level,omitempty" toml:"log_level"`
	LogAddSource *bool       `json:"log_add_source,omitempty" toml:"log_add_source"`
}

// Fit is the terminal area available for rendering. Zero values
// use the terminal's size.
type Fit struct {
	Cols  int `json:"cols,omitempty" toml:"cols"`
	Lines int `json:"lines,omitempty" toml:"lines"`
}

// Duration is a time.Duration that is marshaled as text.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Schema is the CUE schema for a valid configuration.
const Schema = `
{
	decoder?:            "auto" | "image" | "codec"
	iterations?:         int & >=0
	max_frame_rate?:     number & >0
	min_frame_duration?: _#duration
	fit?: {
		cols?:  int & >0
		lines?: int & >0
	}
	invert?:         bool
	log_level?:      _#log_level
	log_add_source?: bool
}

_#duration:  =~"^(?:[0-9]+(?:\\.[0-9]*)?(?:ns|us|µs|ms|s|m|h))+$"
_#log_level: =~"(?i)^(?:debug|info|warn|error)$"
`

// Find returns the path of the user's configuration file. If no
// configuration file exists, the error is fs.ErrNotExist.
func Find() (string, error) {
	return xdg.Config(Name, false)
}

// Load reads and validates the configuration file at path. If path is
// empty, the file found by Find is used and a missing file is not an
// error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Find()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &Config{}, nil
			}
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads and validates a TOML configuration from r.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		unknown := make([]string, len(keys))
		for i, k := range keys {
			unknown[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(unknown, ", "))
	}
	_, err = Validate(Schema, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
