// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The flick command decodes animated images and plays them in a text
// terminal using braille characters.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/kortschak/flick/internal/animation"
	"github.com/kortschak/flick/internal/config"
	"github.com/kortschak/flick/internal/decode"
	"github.com/kortschak/flick/internal/locked"
	"github.com/kortschak/flick/internal/placeholder"
	"github.com/kortschak/flick/internal/slogext"
	"github.com/kortschak/flick/internal/term"
	"github.com/kortschak/flick/internal/version"
	"github.com/kortschak/flick/internal/watch"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

func Main() int {
	info := flag.Bool("info", false, "print a JSON summary of the image and exit")
	flag.Bool("play", true, "play the image in the terminal (default unless -info)")
	watching := flag.Bool("watch", false, "reload the image when the file changes")
	decoder := flag.String("decoder", "auto", "image decoder (auto, image or codec)")
	loop := flag.Int("loop", -1, "iterations to play, 0 is infinite (default from image)")
	fps := flag.Float64("fps", animation.DefaultMaxFrameRate, "maximum frame rate")
	minDelay := flag.Duration("min_delay", 0, "minimum frame duration for the codec decoder")
	cfgPath := flag.String("config", "", "configuration file (default from XDG config directory)")
	logging := flag.String("log", "info", "logging level (debug, info, warn or error)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	fit := flag.String("fit", "", "rendering area as <cols>x<lines> (default terminal size)")
	invert := flag.Bool("invert", false, "render light pixels as dots")
	playFor := flag.Duration("for", 0, "play duration, 0 is until complete or interrupted")
	v := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *v {
		err := version.Fprint(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}
	if flag.NArg() != 1 {
		flag.Usage()
		return invocationError
	}
	path := flag.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	opts, err := resolve(cfg, flags{
		decoder:  *decoder,
		loop:     *loop,
		fps:      *fps,
		minDelay: *minDelay,
		logging:  *logging,
		lines:    *lines,
		fit:      *fit,
		invert:   *invert,
	}, set)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return invocationError
	}

	ws := locked.Writers(os.Stdout, os.Stderr)
	stdout, stderr := ws[0], ws[1]
	log := slog.New(slogext.GoID{Handler: slogext.NewJSONHandler(stderr, &slogext.HandlerOptions{
		Level:     opts.level,
		AddSource: slogext.NewAtomicBool(opts.addSource),
	})})

	dec, err := newDecoder(opts, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *info {
		err = printInfo(ctx, stdout, dec, path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}

	if *playFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *playFor)
		defer cancel()
	}
	p := &player{
		path:  path,
		opts:  opts,
		dec:   dec,
		out:   stdout,
		watch: *watching,
		root:  log,
		log:   log.With(slog.String("component", "flick.main")),
	}
	return p.run(ctx)
}

// flags holds the command line values that may be overridden by or
// override configuration file values.
type flags struct {
	decoder  string
	loop     int
	fps      float64
	minDelay time.Duration
	logging  string
	lines    bool
	fit      string
	invert   bool
}

// options is the merged configuration.
type options struct {
	decoder    string
	iterations *animation.Iterations
	fps        float64
	minDelay   time.Duration
	level      slog.Level
	addSource  bool
	cols       int
	lines      int
	invert     bool
}

// resolve merges the configuration and command line values. Command line
// values are used when present in set.
func resolve(cfg *config.Config, f flags, set map[string]bool) (options, error) {
	opts := options{
		decoder:  f.decoder,
		fps:      f.fps,
		minDelay: f.minDelay,
		invert:   f.invert,
		level:    slog.LevelInfo,
	}
	if !set["decoder"] && cfg.Decoder != "" {
		opts.decoder = cfg.Decoder
	}
	switch {
	case set["loop"]:
		if f.loop < 0 {
			return options{}, fmt.Errorf("invalid loop count: %d", f.loop)
		}
		n := animation.Iterations(f.loop)
		opts.iterations = &n
	case cfg.Iterations != nil:
		n := animation.Iterations(*cfg.Iterations)
		opts.iterations = &n
	}
	if !set["fps"] && cfg.MaxFrameRate != nil {
		opts.fps = *cfg.MaxFrameRate
	}
	if opts.fps <= 0 {
		return options{}, fmt.Errorf("invalid frame rate: %v", opts.fps)
	}
	if !set["min_delay"] && cfg.MinFrameDuration != nil {
		opts.minDelay = time.Duration(*cfg.MinFrameDuration)
	}
	if !set["invert"] && cfg.Invert != nil {
		opts.invert = *cfg.Invert
	}

	switch {
	case set["log"]:
		err := opts.level.UnmarshalText([]byte(f.logging))
		if err != nil {
			return options{}, err
		}
	case cfg.LogLevel != nil:
		opts.level = *cfg.LogLevel
	}
	opts.addSource = f.lines
	if !set["lines"] && cfg.LogAddSource != nil {
		opts.addSource = *cfg.LogAddSource
	}

	switch {
	case f.fit != "":
		var err error
		opts.cols, opts.lines, err = parseFit(f.fit)
		if err != nil {
			return options{}, err
		}
	case cfg.Fit != nil:
		opts.cols, opts.lines = cfg.Fit.Cols, cfg.Fit.Lines
	}
	return opts, nil
}

// parseFit parses a <cols>x<lines> terminal area.
func parseFit(s string) (cols, lines int, err error) {
	c, l, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid fit %q: want <cols>x<lines>", s)
	}
	cols, err = strconv.Atoi(c)
	if err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid fit columns %q", c)
	}
	lines, err = strconv.Atoi(l)
	if err != nil || lines <= 0 {
		return 0, 0, fmt.Errorf("invalid fit lines %q", l)
	}
	return cols, lines, nil
}

// newDecoder returns the decoder selected by opts.
func newDecoder(opts options, log *slog.Logger) (animation.Decoder, error) {
	log = log.With(slog.String("component", "flick.decode"))
	progress := func(frame, total int) {
		log.LogAttrs(context.Background(), slog.LevelDebug, "decoded frame", slog.Int("frame", frame), slog.Int("total", total))
	}
	img := decode.Image{Progress: progress}
	codec := decode.Codec{Progress: progress, MinFrameDuration: opts.minDelay}
	switch opts.decoder {
	case "", "auto":
		return decode.Auto{Image: img, Codec: codec}, nil
	case "image":
		return img, nil
	case "codec":
		return codec, nil
	default:
		return nil, fmt.Errorf("unknown decoder: %q", opts.decoder)
	}
}

// summary is the JSON representation of a decoded image. A LoopCount
// of zero is infinite.
type summary struct {
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Frames      int     `json:"frames"`
	TotalMS     int64   `json:"total_ms"`
	DurationsMS []int64 `json:"durations_ms"`
	LoopCount   int     `json:"loop_count"`
	Animated    bool    `json:"animated"`
}

func printInfo(ctx context.Context, w io.Writer, dec animation.Decoder, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	store, err := dec.Decode(ctx, f)
	if err != nil {
		return err
	}
	defer store.Release()

	info := animation.StoreInfo(store)
	s := summary{
		Format:      info.Format,
		Width:       info.Bounds.Dx(),
		Height:      info.Bounds.Dy(),
		Frames:      info.Frames,
		TotalMS:     info.Total.Milliseconds(),
		DurationsMS: make([]int64, len(info.Durations)),
		LoopCount:   int(info.LoopCount),
		Animated:    info.Animated,
	}
	for i, d := range info.Durations {
		s.DurationsMS[i] = d.Milliseconds()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(s)
}

// player plays an image file to a terminal.
type player struct {
	path  string
	opts  options
	dec   animation.Decoder
	out   io.Writer
	watch bool
	root  *slog.Logger
	log   *slog.Logger

	ctrl     *animation.Controller
	renderer *term.Renderer
}

func (p *player) run(ctx context.Context) int {
	cols, lines := p.opts.cols, p.opts.lines
	if cols == 0 || lines == 0 {
		tc, tl, err := term.Size(int(os.Stdout.Fd()))
		if err != nil {
			p.log.LogAttrs(ctx, slog.LevelDebug, "terminal size", slog.Any("error", err))
			tc, tl = 80, 24
		}
		if cols == 0 {
			cols = tc
		}
		if lines == 0 {
			lines = tl
		}
	}
	p.renderer = term.NewRenderer(p.out, cols, lines)
	p.renderer.Invert = p.opts.invert
	defer p.renderer.Close()

	completed := make(chan struct{}, 1)
	complete := func() {
		select {
		case completed <- struct{}{}:
		default:
		}
	}
	p.ctrl = animation.NewController(p.dec, animation.TickerScheduler{},
		animation.WithLogger(p.root),
		animation.WithMaxFrameRate(p.opts.fps),
		animation.WithCompletion(complete),
	)
	defer p.ctrl.Dispose()

	frames := make(chan struct{}, 1)
	p.ctrl.OnFrameChanged(func(int) {
		select {
		case frames <- struct{}{}:
		default:
		}
	})

	var changes chan watch.Change
	if p.watch {
		changes = make(chan watch.Change, 1)
		w, err := watch.New(ctx, p.path, changes, -1, p.root)
		if err != nil {
			p.log.LogAttrs(ctx, slog.LevelError, "watch", slog.String("path", p.path), slog.Any("error", err))
			return internalError
		}
		defer w.Close()
	}

	p.log.LogAttrs(ctx, slog.LevelDebug, "start", slog.String("path", p.path), slog.Int("cols", cols), slog.Int("lines", lines))
	ok := p.load(ctx)
	if !ok && !p.watch {
		return internalError
	}
	if ok && !p.ctrl.IsAnimated() {
		complete()
	}
	for {
		select {
		case <-ctx.Done():
			p.log.LogAttrs(context.Background(), slog.LevelDebug, "exit", slog.Any("reason", context.Cause(ctx)))
			return success
		case <-frames:
			p.draw(ctx)
		case <-completed:
			p.draw(ctx)
			if !p.watch {
				return success
			}
		case c := <-changes:
			if c.Err != nil {
				p.log.LogAttrs(ctx, slog.LevelWarn, "watch", slog.Any("change", c))
				continue
			}
			p.log.LogAttrs(ctx, slog.LevelInfo, "reload", slog.String("path", p.path))
			if p.load(ctx) && !p.ctrl.IsAnimated() {
				complete()
			}
		}
	}
}

// load loads the player's image file and starts playback. If the load
// fails and no image is being played, a placeholder describing the
// failure is rendered.
func (p *player) load(ctx context.Context) bool {
	err := p.open(ctx)
	if err != nil {
		if animation.IsCancelled(err) && ctx.Err() != nil {
			return false
		}
		p.log.LogAttrs(ctx, slog.LevelWarn, "load failed", slog.String("path", p.path), slog.Any("error", err))
		if p.ctrl.State() == animation.Idle {
			img := placeholder.Image(p.renderer.Pixels(), err.Error(), color.Black, color.White)
			err = p.renderer.Render(img)
			if err != nil {
				p.log.LogAttrs(ctx, slog.LevelError, "render placeholder", slog.Any("error", err))
			}
		}
		return false
	}
	info, _ := p.ctrl.Info()
	p.log.LogAttrs(ctx, slog.LevelDebug, "loaded",
		slog.String("format", info.Format),
		slog.Any("bounds", slogext.Rectangle(info.Bounds)),
		slog.Any("loop_count", slogext.Stringer{Stringer: info.LoopCount}),
	)
	n := info.LoopCount
	if p.opts.iterations != nil {
		n = *p.opts.iterations
	}
	p.ctrl.SetIterations(n)
	p.ctrl.Start()
	return true
}

func (p *player) open(ctx context.Context) error {
	f, err := os.Open(p.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.ctrl.Load(ctx, f)
}

func (p *player) draw(ctx context.Context) {
	err := p.ctrl.Draw(func(s *animation.Surface) error {
		return p.renderer.Render(s.Image())
	})
	if err != nil && !errors.Is(err, animation.ErrNoFrame) && !errors.Is(err, animation.ErrDisposed) {
		p.log.LogAttrs(ctx, slog.LevelError, "render", slog.Any("error", err))
	}
}
