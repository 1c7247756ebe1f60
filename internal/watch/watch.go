// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package watch provides notification of changes to the contents of a
// single file.
package watch

import (
	"context"
	"crypto/sha1"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileDebounce is the default duration we wait for the contents to have
// stabilised to work around some editors writing an empty file and then the
// buffer.
const FileDebounce = 10 * time.Millisecond

// Change is a change to a watched file's contents.
type Change struct {
	Event fsnotify.Event
	Err   error
}

func (c Change) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", c.Event.Name),
		slog.String("op", c.Event.Op.String()),
	}
	if c.Err != nil {
		attrs = append(attrs, slog.Any("error", c.Err))
	}
	return slog.GroupValue(attrs...)
}

// Watcher sends a Change when the contents of a file are written or the
// file is replaced. Changes that leave the contents unaltered are not
// sent.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan<- Change
	sum      [sha1.Size]byte
	log      *slog.Logger

	once sync.Once
	done chan struct{}
}

// New starts a Watcher for the file at path, sending changes on the
// changes channel until ctx is cancelled or the Watcher is closed. The
// file's parent directory is watched so that replacement by rename is
// seen. The debounce parameter specifies how long to wait after an
// event before reading the file. If it is less than zero, FileDebounce
// is used.
func New(ctx context.Context, path string, changes chan<- Change, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce < 0 {
		debounce = FileDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = fw.Add(filepath.Dir(path))
	if err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:     path,
		debounce: debounce,
		watcher:  fw,
		changes:  changes,
		log:      log.With(slog.String("component", "watch")),
		done:     make(chan struct{}),
	}
	w.sum, _ = checksum(path)
	go w.process(ctx)
	return w, nil
}

// Close stops the watcher and waits for it to finish.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
	})
	<-w.done
	return err
}

func (w *Watcher) process(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				w.log.LogAttrs(ctx, slog.LevelDebug, "ignore event", slog.Any("event", Change{Event: ev}))
				continue
			}
			time.Sleep(w.debounce)
			sum, err := checksum(w.path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					// Replaced again before we could read it;
					// a later create will follow.
					continue
				}
				w.log.LogAttrs(ctx, slog.LevelError, "read file", slog.Any("error", err))
				w.send(ctx, Change{Event: ev, Err: err})
				continue
			}
			if sum == w.sum {
				w.log.LogAttrs(ctx, slog.LevelDebug, "no change", slog.String("name", ev.Name))
				continue
			}
			w.sum = sum
			w.send(ctx, Change{Event: ev})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(ctx, Change{Err: err})
		}
	}
}

func (w *Watcher) send(ctx context.Context, c Change) {
	w.log.LogAttrs(ctx, slog.LevelDebug, "change", slog.Any("change", c))
	select {
	case <-ctx.Done():
	case w.changes <- c:
	}
}

func checksum(path string) ([sha1.Size]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return [sha1.Size]byte{}, err
	}
	return sha1.Sum(b), nil
}
