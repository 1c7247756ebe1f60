// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xdg locates per-user and system configuration files following
// the XDG base directory conventions of the host platform.
package xdg

import (
	"io/fs"
	"os"
	"path/filepath"
)

// base is a configuration base directory convention.
type base struct {
	// homeKey and homeDef are the environment variable and
	// $HOME relative default of the user directory.
	homeKey, homeDef string
	// dirsKey and dirsDef are the environment variable and
	// default list of the system directories.
	dirsKey, dirsDef string
}

var config = base{
	homeKey: keyConfigHome, homeDef: defConfigHome,
	dirsKey: keyConfigDirs, dirsDef: defConfigDirs,
}

// Config returns the path to the named configuration file, searching
// the user configuration directory and then, unless local is true, the
// system configuration directories. If no file is found, the returned
// error is fs.ErrNotExist.
func Config(name string, local bool) (string, error) {
	return config.find(name, local)
}

// ConfigHome returns the user configuration directory and whether it
// could be determined.
func ConfigHome() (string, bool) {
	return lookup(config.homeKey, config.homeDef, homeKey)
}

// ConfigPath returns the path that the named configuration file would
// have in the user configuration directory, whether or not it exists.
func ConfigPath(name string) (string, bool) {
	dir, ok := ConfigHome()
	if !ok {
		return "", false
	}
	return filepath.Join(dir, name), true
}

func (b base) find(name string, local bool) (string, error) {
	var candidates []string
	if dir, ok := lookup(b.homeKey, b.homeDef, homeKey); ok {
		candidates = append(candidates, dir)
	}
	if !local {
		if dirs, ok := lookup(b.dirsKey, b.dirsDef, ""); ok {
			candidates = append(candidates, filepath.SplitList(dirs)...)
		}
	}
	for _, dir := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fs.ErrNotExist
}

// lookup returns the value of the environment variable key if it is set.
// Otherwise it returns def, made relative to the directory named by the
// home environment variable if def is relative and home is not empty.
func lookup(key, def, home string) (string, bool) {
	if key != "" {
		if val, ok := os.LookupEnv(key); ok {
			return val, true
		}
	}
	switch {
	case def == "":
		return "", false
	case home == "", filepath.IsAbs(def):
		return def, true
	}
	dir, ok := os.LookupEnv(home)
	if !ok {
		return "", false
	}
	return filepath.Join(dir, def), true
}
