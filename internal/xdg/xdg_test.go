// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

var lookupTests = []struct {
	name string
	set  map[string]string

	key, def, home string

	want   string
	wantOK bool
}{
	{
		name: "env_set",
		set: map[string]string{
			"test_HOME": "testdata/home",
			"testkey":   "testdata/home/dir",
		},
		key:  "testkey",
		def:  "global_dir",
		home: "test_HOME",

		want:   "testdata/home/dir",
		wantOK: true,
	},
	{
		name: "home_relative",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		def:  "global_dir",
		home: "test_HOME",

		want:   "testdata/home/global_dir",
		wantOK: true,
	},
	{
		name: "no_default",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		home: "test_HOME",

		want:   "",
		wantOK: false,
	},
	{
		name: "no_home",
		key:  "testkey",
		def:  "global_dir",

		want:   "global_dir",
		wantOK: true,
	},
	{
		name: "absolute_default",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		def:  "/etc/xdg",
		home: "test_HOME",

		want:   "/etc/xdg",
		wantOK: true,
	},
	{
		name: "unset_home",
		key:  "testkey",
		def:  "global_dir",
		home: "test_HOME",

		want:   "",
		wantOK: false,
	},
}

func TestLookup(t *testing.T) {
	for _, test := range lookupTests {
		t.Run(test.name, func(t *testing.T) {
			for _, k := range []string{"test_HOME", "testkey"} {
				if _, ok := os.LookupEnv(k); ok {
					t.Fatalf("already set in env: %s", k)
				}
			}
			for k, v := range test.set {
				t.Setenv(k, v)
			}

			got, gotOK := lookup(test.key, test.def, test.home)
			if gotOK != test.wantOK {
				t.Errorf("unexpected ok: got:%t want:%t", gotOK, test.wantOK)
			}
			if got != test.want {
				t.Errorf("unexpected result: got:%q want:%q", got, test.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user")
	system := filepath.Join(dir, "system")
	for _, d := range []string{user, system} {
		err := os.MkdirAll(filepath.Join(d, "flick"), 0o755)
		if err != nil {
			t.Fatalf("unexpected error making directory: %v", err)
		}
	}
	err := os.WriteFile(filepath.Join(system, "flick", "config.toml"), nil, 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing file: %v", err)
	}
	t.Setenv("test_config_home", user)
	t.Setenv("test_config_dirs", system)
	b := base{homeKey: "test_config_home", homeDef: ".config", dirsKey: "test_config_dirs", dirsDef: "/etc/xdg"}

	got, err := b.find("flick/config.toml", false)
	if err != nil {
		t.Fatalf("unexpected error finding system file: %v", err)
	}
	if want := filepath.Join(system, "flick", "config.toml"); got != want {
		t.Errorf("unexpected path: got:%q want:%q", got, want)
	}

	_, err = b.find("flick/config.toml", true)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for local search: got:%v want:%v", err, fs.ErrNotExist)
	}

	err = os.WriteFile(filepath.Join(user, "flick", "config.toml"), nil, 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing file: %v", err)
	}
	got, err = b.find("flick/config.toml", true)
	if err != nil {
		t.Fatalf("unexpected error finding user file: %v", err)
	}
	if want := filepath.Join(user, "flick", "config.toml"); got != want {
		t.Errorf("unexpected path: got:%q want:%q", got, want)
	}
}
