// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kortschak/flick/internal/slogext"
)

// State is the playback state of a Controller.
type State int

const (
	Idle State = iota
	Loaded
	Running
	Stopped
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

var (
	// ErrDisposed is returned by operations on a disposed Controller.
	ErrDisposed = errors.New("controller disposed")

	// ErrNoFrame is returned by Draw when no frame has been resolved.
	ErrNoFrame = errors.New("no current frame")

	errSuperseded = errors.New("superseded by later load")
)

// DefaultMaxFrameRate is the highest tick rate a Controller will
// schedule unless configured otherwise.
const DefaultMaxFrameRate = 60

// Controller plays a decoded animation against a Scheduler.
//
// Controller methods are safe for concurrent use. Frame changed listeners
// are called synchronously from the goroutine that resolved the frame and
// must not block.
type Controller struct {
	dec   Decoder
	sched Scheduler
	now   func() time.Time
	log   *slog.Logger

	minInterval time.Duration
	completed   func()

	mu      sync.Mutex
	state   State
	store   *Store
	clock   Clock
	index   int
	target  Iterations
	timer   Timer
	gen     uint64
	loadGen uint64

	lmu       sync.Mutex
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(index int)
}

// Option is a Controller option.
type Option func(*Controller)

// WithLogger sets the Controller's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithNow sets the function used to obtain the current time when
// starting and stopping playback.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithMaxFrameRate sets the maximum rate at which ticks will be scheduled.
// Non-positive values are ignored.
func WithMaxFrameRate(fps float64) Option {
	return func(c *Controller) {
		if fps > 0 {
			c.minInterval = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithIterations sets the initial iteration limit. The limit is checked
// before each tick resolves a frame, so playback halts on the first frame
// of the iteration after the limit is reached.
func WithIterations(n Iterations) Option {
	return func(c *Controller) {
		c.target = n
	}
}

// WithCompletion sets a function to be called when playback halts after
// reaching its iteration limit.
func WithCompletion(fn func()) Option {
	return func(c *Controller) {
		c.completed = fn
	}
}

// NewController returns a new Controller in the Idle state using dec to
// decode images and sched to schedule playback ticks. If sched is nil,
// a TickerScheduler is used.
func NewController(dec Decoder, sched Scheduler, opts ...Option) *Controller {
	if sched == nil {
		sched = TickerScheduler{}
	}
	c := &Controller{
		dec:         dec,
		sched:       sched,
		now:         time.Now,
		log:         slog.New(slog.DiscardHandler),
		minInterval: time.Second / DefaultMaxFrameRate,
		index:       -1,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(slog.String("component", "animation.controller"))
	return c
}

// Load decodes the image in r and makes it the Controller's current
// image, leaving the Controller in the Loaded state. If the Controller
// already holds an image, it continues to play until the new image has
// been decoded; the previous image is released when it is replaced. If
// decoding fails, the Controller is left unaltered and the returned
// error is a *DecodeError.
func (c *Controller) Load(ctx context.Context, r io.Reader) error {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	store, err := c.dec.Decode(ctx, r)
	if err != nil {
		err = asDecodeError(ctx, err)
		c.log.LogAttrs(ctx, slog.LevelDebug, "load failed", slog.Any("error", err), slog.Bool("cancelled", IsCancelled(err)))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state == Disposed:
		store.Release()
		return ErrDisposed
	case gen != c.loadGen:
		store.Release()
		return Cancellation(store.Format(), -1, errSuperseded)
	}
	c.haltLocked()
	c.store.Release()
	c.store = store
	c.index = -1
	c.clock.Reset(c.now())
	c.state = Loaded
	c.log.LogAttrs(ctx, slog.LevelDebug, "loaded",
		slog.String("format", store.Format()),
		slog.Int("frames", store.Len()),
		slog.Duration("total", store.Total()),
		slog.Any("durations", slogext.Durations(store.durations)),
	)
	return nil
}

// asDecodeError returns err as a *DecodeError, classifying context
// errors as cancellation and unclassified errors as decode failures.
func asDecodeError(ctx context.Context, err error) error {
	var derr *DecodeError
	if errors.As(err, &derr) {
		return err
	}
	if ctx.Err() != nil || IsCancelled(err) {
		return Cancellation("", -1, err)
	}
	return NewDecodeError(DecodeFailure, "", err)
}

// Start begins playback. Start has no effect unless the Controller is in
// the Loaded or Stopped state. A static image is resolved to its single
// frame without scheduling ticks.
func (c *Controller) Start() {
	c.mu.Lock()
	switch c.state {
	case Loaded, Stopped:
	default:
		c.mu.Unlock()
		return
	}
	c.state = Running
	c.clock.Reset(c.now())
	if !c.store.IsAnimated() {
		c.index = 0
		c.mu.Unlock()
		c.notify(0)
		return
	}
	interval := c.intervalLocked()
	c.gen++
	gen := c.gen
	c.timer = c.sched.Schedule(interval, func(now time.Time) {
		c.tick(gen, now)
	})
	idx := c.clock.Resolve(0, c.store.Total(), c.store.durations)
	changed := idx != c.index
	c.index = idx
	c.log.LogAttrs(context.Background(), slog.LevelDebug, "started",
		slog.Duration("interval", interval),
		slog.String("iterations", c.target.String()),
	)
	c.mu.Unlock()
	if changed {
		c.notify(idx)
	}
}

// intervalLocked returns the tick interval for the current store: the
// average frame duration limited by the maximum frame rate.
func (c *Controller) intervalLocked() time.Duration {
	interval := c.store.Total() / time.Duration(c.store.Len())
	return max(interval, c.minInterval)
}

// tick is the playback advance step for the timer of the given generation.
func (c *Controller) tick(gen uint64, now time.Time) {
	c.mu.Lock()
	if c.state != Running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.target.reached(c.clock.Iterations()) {
		c.haltLocked()
		c.state = Stopped
		c.log.LogAttrs(context.Background(), slog.LevelDebug, "completed",
			slog.Uint64("iterations", c.clock.Iterations()),
			slog.Int("index", c.index),
		)
		c.mu.Unlock()
		if c.completed != nil {
			c.completed()
		}
		return
	}
	idx := c.clock.Resolve(c.clock.Elapsed(now), c.store.Total(), c.store.durations)
	changed := idx != c.index
	c.index = idx
	c.mu.Unlock()
	if changed {
		c.notify(idx)
	}
}

// Stop halts playback and resets the playback clock. The current frame
// index is retained. Stop has no effect unless the Controller is in the
// Loaded, Running or Stopped state.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Loaded, Running, Stopped:
	default:
		return
	}
	c.haltLocked()
	c.clock.Reset(c.now())
	c.state = Stopped
}

// haltLocked stops any active timer. c.mu must be held.
func (c *Controller) haltLocked() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
	c.gen++
}

// Dispose halts playback and releases the loaded image. Dispose is
// idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return
	}
	c.haltLocked()
	c.store.Release()
	c.store = nil
	c.index = -1
	c.state = Disposed
	c.loadGen++
	c.mu.Unlock()

	c.lmu.Lock()
	c.listeners = nil
	c.lmu.Unlock()
}

// Close implements the io.Closer interface by calling Dispose.
func (c *Controller) Close() error {
	c.Dispose()
	return nil
}

// SetIterations sets the number of iterations to play before playback
// halts. It takes effect at the next tick. As with WithIterations,
// playback halts on the first frame of the iteration after the limit.
func (c *Controller) SetIterations(n Iterations) {
	c.mu.Lock()
	c.target = n
	c.mu.Unlock()
}

// OnFrameChanged registers fn to be called with the new frame index each
// time the current frame changes. The returned function removes the
// registration.
func (c *Controller) OnFrameChanged(fn func(index int)) (remove func()) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) notify(index int) {
	c.lmu.Lock()
	listeners := c.listeners
	c.lmu.Unlock()
	for _, l := range listeners {
		l.fn(index)
	}
}

// State returns the Controller's current state. A Running static image
// has no scheduled timer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentIndex returns the index of the current frame, or -1 if no frame
// has been resolved.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// CurrentFrame returns the current frame's surface. The surface is only
// valid until the next call to Load or Dispose; use Draw to access the
// surface while excluding those operations.
func (c *Controller) CurrentFrame() (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil || c.index < 0 {
		return nil, false
	}
	return c.store.Frame(c.index).Surface, true
}

// Draw calls fn with the current frame's surface. The surface will not be
// released while fn is running. fn must not call Controller methods other
// than those that do not take the Controller's lock. If no frame has been
// resolved, Draw returns ErrNoFrame.
func (c *Controller) Draw(fn func(*Surface) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disposed {
		return ErrDisposed
	}
	if c.store == nil || c.index < 0 {
		return ErrNoFrame
	}
	return fn(c.store.Frame(c.index).Surface)
}

// Size returns the canvas size of the loaded image.
func (c *Controller) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return image.Point{}
	}
	return c.store.Bounds().Size()
}

// Resolution returns the density of the loaded image.
func (c *Controller) Resolution() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return Resolution{}
	}
	return c.store.Resolution()
}

// IsAnimated returns whether the loaded image has more than one frame.
func (c *Controller) IsAnimated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store != nil && c.store.IsAnimated()
}

// Info is a summary of a loaded image.
type Info struct {
	Format     string
	Bounds     image.Rectangle
	Resolution Resolution
	Frames     int
	Total      time.Duration
	Durations  []time.Duration
	LoopCount  Iterations
	Animated   bool
}

// Info returns a summary of the loaded image. The boolean result is false
// if no image is loaded.
func (c *Controller) Info() (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return Info{}, false
	}
	return StoreInfo(c.store), true
}

// StoreInfo returns a summary of s.
func StoreInfo(s *Store) Info {
	return Info{
		Format:     s.Format(),
		Bounds:     s.Bounds(),
		Resolution: s.Resolution(),
		Frames:     s.Len(),
		Total:      s.Total(),
		Durations:  s.Durations(),
		LoopCount:  s.LoopCount(),
		Animated:   s.IsAnimated(),
	}
}
