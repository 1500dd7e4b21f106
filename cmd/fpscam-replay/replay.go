package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/avatar"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/camera"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/director"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// settings holds the replay command configuration.
type settings struct {
	Config    string  `env:"FPSCAM_CONFIG"`
	Workers   int     `env:"FPSCAM_REPLAY_WORKERS" envDefault:"4"`
	FrameRate float64 `env:"FPSCAM_FRAME_RATE"     envDefault:"90"`
	Realtime  bool    `env:"FPSCAM_REALTIME"`
	Profile   bool    `env:"FPSCAM_PROFILE"`
	LogLevel  string  `env:"FPSCAM_LOG_LEVEL"      envDefault:"info"`
	LogFormat string  `env:"FPSCAM_LOG_FORMAT"     envDefault:"text"`

	Traces []string
}

// parseSettings reads the environment first and lets flags override it. Remaining arguments are trace files.
func parseSettings(fs *flag.FlagSet, args []string) (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return settings{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&s.Config, "config", s.Config, "path to a YAML camera configuration")
	fs.IntVar(&s.Workers, "workers", s.Workers, "number of traces replayed in parallel")
	fs.Float64Var(&s.FrameRate, "fps", s.FrameRate, "frame rate for traces whose header has none")
	fs.BoolVar(&s.Realtime, "realtime", s.Realtime, "pace replay in real time")
	fs.BoolVar(&s.Profile, "profile", s.Profile, "log frame statistics every second of trace time")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "text or json")
	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}
	s.Traces = fs.Args()
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s, nil
}

// result is where one replay left the camera.
type result struct {
	Path     string
	Session  uuid.UUID
	Frames   uint64
	Switches int
	Final    behavior.Kind
	Side     behavior.Side
	Position mgl32.Vec3
	Fov      float32
	Err      error
}

func (r result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: error: %v", r.Path, r.Err)
	}
	p := r.Position
	return fmt.Sprintf("%s: session=%s frames=%d switches=%d final=%s side=%s position=(%.3f, %.3f, %.3f) fov=%.1f",
		r.Path, r.Session, r.Frames, r.Switches, r.Final, r.Side, p.X(), p.Y(), p.Z(), r.Fov)
}

func run(ctx context.Context, s settings, out, errOut io.Writer) error {
	if len(s.Traces) == 0 {
		return errors.New("at least one trace file is required")
	}
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(s.LogFormat)
	if err != nil {
		return err
	}
	logger := logging.New(errOut, level, format)

	cfg, err := loadConfiguration(s.Config)
	if err != nil {
		return err
	}
	logger.Debug("replay configuration", slog.Any("configuration", cfg))

	pool := worker.NewDynamicWorkerPool(s.Workers, 256, 1*time.Second)

	// pool.Wait blocks until workers idle out; the WaitGroup is the batch barrier.
	results := make([]result, len(s.Traces))
	var wg sync.WaitGroup
	for i, path := range s.Traces {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i] = replay(ctx, path, cfg, s, logger)
				return nil, results[i].Err
			},
		})
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		fmt.Fprintln(out, r)
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return errors.Join(errs...)
}

func loadConfiguration(path string) (config.Configuration, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// replay plays one trace through its own director, camera and avatar.
func replay(ctx context.Context, path string, cfg config.Configuration, s settings, logger *slog.Logger) result {
	res := result{Path: path}

	trace, err := tracking.OpenTrace(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer trace.Close()

	header := trace.Header()
	res.Session = header.Session
	logger = logger.With(slog.String("trace", path), slog.String("session", header.Session.String()))

	cam := camera.NewCamera(camera.WithFov(cfg.CameraDefaultFov))
	av := avatar.NewAvatar()
	d := director.NewDirector(cfg,
		director.WithTimers(timer.NewTimers()),
		director.WithSink(cam),
		director.WithAvatar(av),
		director.WithLogger(logger),
	)
	eng := engine.NewEngine(
		engine.WithDirector(d),
		engine.WithProvider(trace),
		engine.WithTickRate(common.Coalesce(float64(header.FrameRate), s.FrameRate)),
		engine.WithRealtime(s.Realtime),
		engine.WithProfiling(s.Profile),
		engine.WithLogger(logger),
	)
	stop := context.AfterFunc(ctx, eng.Quit)
	defer stop()

	res.Err = eng.Run()
	res.Frames = eng.Frames()
	res.Switches = d.Switches()
	res.Final = d.Active().Kind()
	res.Side = d.OverShoulder().Side()
	res.Position = cam.Position()
	res.Fov = cam.Fov()
	return res
}
