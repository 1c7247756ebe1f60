// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var decodeTests = []struct {
	name    string
	text    string
	want    *Config
	wantErr string
}{
	{
		name: "empty",
		text: "",
		want: &Config{},
	},
	{
		name: "complete",
		text: `decoder = "image"
iterations = 2
max_frame_rate = 24.0
min_frame_duration = "10ms"
invert = true
log_level = "warn"
log_add_source = true

[fit]
cols = 40
lines = 10
`,
		want: &Config{
			Decoder:          "image",
			Iterations:       ptr(2),
			MaxFrameRate:     ptr(24.0),
			MinFrameDuration: ptr(Duration(10 * time.Millisecond)),
			Fit:              &Fit{Cols: 40, Lines: 10},
			Invert:           ptr(true),
			LogLevel:         ptr(slog.LevelWarn),
			LogAddSource:     ptr(true),
		},
	},
	{
		name:    "unknown_key",
		text:    "decoder = \"auto\"\nspeed = 2\n",
		wantErr: "unknown configuration keys: speed",
	},
	{
		name:    "bad_duration",
		text:    `min_frame_duration = "soon"`,
		wantErr: "soon",
	},
	{
		name:    "invalid",
		text:    `decoder = "gif"`,
		wantErr: "decoder",
	},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(test.text))
			if test.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), test.wantErr) {
					t.Fatalf("unexpected error: got:%v want:%q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("configuration directory is not environment controlled on " + runtime.GOOS)
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(home, "system"))

	t.Run("missing", func(t *testing.T) {
		got, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cmp.Equal(&Config{}, got) {
			t.Errorf("unexpected result: got:%+v want empty", got)
		}
	})

	t.Run("found", func(t *testing.T) {
		path := filepath.Join(home, "config", Name)
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			t.Fatalf("unexpected error making directory: %v", err)
		}
		err = os.WriteFile(path, []byte("iterations = 1\n"), 0o644)
		if err != nil {
			t.Fatalf("unexpected error writing config: %v", err)
		}
		got, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := &Config{Iterations: ptr(1)}
		if !cmp.Equal(want, got) {
			t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
		}
	})

	t.Run("explicit_missing", func(t *testing.T) {
		_, err := Load(filepath.Join(home, "nowhere.toml"))
		if !os.IsNotExist(err) {
			t.Errorf("unexpected error: got:%v want not exist", err)
		}
	})
}
