package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hubastard/grovetouch/engine/config"
	"github.com/hubastard/grovetouch/engine/core"
	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/input/evdev"
	"github.com/hubastard/grovetouch/engine/input/mouse"
	"github.com/hubastard/grovetouch/engine/input/postproc"
	"github.com/hubastard/grovetouch/engine/input/term"
	"github.com/hubastard/grovetouch/engine/input/tuio"
	"github.com/hubastard/grovetouch/engine/platform"
	"github.com/hubastard/grovetouch/engine/profiler"
	"github.com/hubastard/grovetouch/engine/record"
	"github.com/hubastard/grovetouch/engine/widget"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "touchdemo.toml", "path to the TOML config")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	headless := flag.Bool("headless", false, "run without a window")
	recordTo := flag.String("record", "", "record the session under this name")
	replay := flag.String("replay", "", "replay the named session from the record database")
	profileOut := flag.String("profile-out", "", "write a speedscope profile here on exit (needs -tags profile)")
	speedscope := flag.Bool("speedscope", false, "open the profile in speedscope on exit (needs -tags profile)")
	listSessions := flag.Bool("sessions", false, "list recorded sessions and exit")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	if *listSessions {
		if err := printSessions(cfg.Record.Path); err != nil {
			logger.Error("failed to list sessions", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, options{
		headless:   *headless,
		record:     *recordTo,
		replay:     *replay,
		profileOut: *profileOut,
		speedscope: *speedscope,
	}); err != nil {
		logger.Error("touchdemo failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	headless   bool
	record     string
	replay     string
	profileOut string
	speedscope bool
}

func run(cfg *config.Config, logger *slog.Logger, opts options) error {
	if opts.profileOut != "" || opts.speedscope {
		profiler.Init(1 << 16)
		defer dumpProfile(logger, opts)
	}

	reg := widget.NewRegistry()
	root := widget.NewWindow(reg, float64(cfg.Graphics.Width), float64(cfg.Graphics.Height))
	if err := root.SetRotation(cfg.Graphics.Rotation); err != nil {
		return err
	}
	quit := buildScene(reg, root, logger)

	var (
		surface core.Surface
		src     mouse.Source
	)
	if !opts.headless {
		s, err := platform.NewGLFWSurface(cfg.Graphics, logger)
		if err != nil {
			return fmt.Errorf("opening window: %w", err)
		}
		s.OnResize(func(w, h int) { root.SetSystemSize(float64(w), float64(h)) })
		surface, src = s, s
		defer func() {
			// Run closes the surface; this only covers early returns.
			s.Close()
		}()
	}

	loop := core.NewLoop(core.Options{
		Logger:   logger,
		Registry: reg,
		Surface:  surface,
		MaxFPS:   cfg.Graphics.FPS,
	})
	if s, ok := surface.(*platform.GLFWSurface); ok && cfg.Graphics.ShowTouches {
		s.SetTouches(loop.Touches)
	}

	factory := input.NewFactory()
	factory.Register("mouse", mouse.Constructor(src))
	factory.Register("tuio", tuio.Constructor)
	factory.Register("linuxmt", evdev.Constructor)
	factory.Register("term", term.Constructor)
	factory.Register("replay", record.Constructor)

	inputs := cfg.Inputs
	if opts.replay != "" {
		inputs = append(inputs, config.Input{
			Name:     "replay",
			Provider: "replay",
			Args:     cfg.Record.Path + ",session=" + opts.replay,
		})
	}
	for _, p := range core.ProvidersFromConfig(inputs, factory, logger) {
		if tp, ok := p.(*term.Provider); ok {
			tp.OnQuit(func() { loop.Close() })
		}
		loop.AddInputProvider(p)
	}

	for _, st := range postproc.FromConfig(cfg.Postproc) {
		loop.AddPostprocStage(st)
	}

	session := cfg.Record.Session
	if opts.record != "" {
		session = opts.record
	}
	if cfg.Record.Enabled || opts.record != "" {
		store, err := record.Open(cfg.Record.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		rec, err := record.NewRecorder(store, session, logger)
		if err != nil {
			return err
		}
		loop.AddPostprocStage(rec)
		logger.Info("recording", "path", cfg.Record.Path, "session", session)
	}

	loop.AddEventListener(root)
	// the loop quits once its last listener is gone
	quit.OnPress(func(*widget.Button) { loop.RemoveEventListener(root) })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return loop.Run(ctx)
}

func dumpProfile(logger *slog.Logger, opts options) {
	if !profiler.Enabled {
		logger.Warn("profiling requested but the binary was built without -tags profile")
		return
	}
	if opts.profileOut != "" {
		if err := profiler.Dump(opts.profileOut); err != nil {
			logger.Warn("profile dump failed", "err", err)
		} else {
			logger.Info("profile written", "path", opts.profileOut)
		}
	}
	if opts.speedscope {
		path, err := profiler.Open()
		if err != nil {
			logger.Warn("speedscope failed", "path", path, "err", err)
		}
	}
}

// buildScene lays out a draggable panel and returns the quit button.
func buildScene(reg *widget.Registry, root *widget.Window, logger *slog.Logger) *widget.Button {
	w, h := root.Node().Size()

	press := func(b *widget.Button) { logger.Info("pressed", "button", b.Label()) }

	panel := widget.NewScatter(reg).Size(w/2, h/2)
	panel.Translate(w/4, h/4)
	ok := widget.NewButton(reg, "ok").OnPress(press)
	ok.Bounds(w/16, h/16, w/8, h/12)
	knob := widget.NewCircle(reg, "knob")
	knob.Bounds(w/4, h/4, h/8, h/8)
	knob.OnPress(press)
	panel.Children(ok, knob)

	quit := widget.NewButton(reg, "quit").WithID("quit")
	quit.Bounds(w-w/8-10, 10, w/8, h/12)

	root.Children(panel, quit)
	return quit
}

func printSessions(path string) error {
	store, err := record.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%-20s %6d events  %s\n", s.Name, s.Events, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
