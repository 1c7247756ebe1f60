// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locked provides concurrency-safe helpers.
package locked

import (
	"bytes"
	"io"
	"sync"
)

// BytesBuffer is a locked bytes.Buffer.
type BytesBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *BytesBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *BytesBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Writer is an io.Writer that serializes writes with other Writers
// sharing its lock.
type Writer struct {
	mu *sync.Mutex
	w  io.Writer
}

// Writers returns Writers wrapping each of ws that share a single lock.
// A write to any of the returned writers is not interleaved with a
// write to another.
func Writers(ws ...io.Writer) []*Writer {
	var mu sync.Mutex
	locked := make([]*Writer, len(ws))
	for i, w := range ws {
		locked[i] = &Writer{mu: &mu, w: w}
	}
	return locked
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
