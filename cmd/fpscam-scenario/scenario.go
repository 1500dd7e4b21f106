package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/scenario"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
	"github.com/caarlos0/env/v11"
)

// errFailed is returned when at least one scenario had a failed expectation.
var errFailed = errors.New("scenario expectations failed")

// settings holds the scenario command configuration.
type settings struct {
	Config    string  `env:"FPSCAM_CONFIG"`
	FrameRate float64 `env:"FPSCAM_FRAME_RATE"  envDefault:"90"`
	Record    string  `env:"FPSCAM_RECORD_DIR"`
	LogLevel  string  `env:"FPSCAM_LOG_LEVEL"   envDefault:"warn"`
	LogFormat string  `env:"FPSCAM_LOG_FORMAT"  envDefault:"text"`

	Scripts []string
}

// parseSettings reads the environment first and lets flags override it. Remaining arguments are scripts.
func parseSettings(fs *flag.FlagSet, args []string) (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return settings{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&s.Config, "config", s.Config, "path to a YAML camera configuration")
	fs.Float64Var(&s.FrameRate, "fps", s.FrameRate, "frame rate scenarios are played at")
	fs.StringVar(&s.Record, "record", s.Record, "directory to write a trace per scenario into")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "text or json")
	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}
	s.Scripts = fs.Args()
	return s, nil
}

func run(s settings, out, errOut io.Writer) error {
	if len(s.Scripts) == 0 {
		return errors.New("at least one scenario script is required")
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

	cfg := config.Default()
	if s.Config != "" {
		if cfg, err = config.LoadFile(s.Config); err != nil {
			return err
		}
	}
	if cfg, err = config.FromEnv(cfg); err != nil {
		return err
	}

	failed := 0
	for _, path := range s.Scripts {
		scn, err := scenario.LoadFile(path)
		if err != nil {
			return err
		}

		options := []scenario.RunOption{
			scenario.WithConfiguration(cfg),
			scenario.WithFrameRate(s.FrameRate),
			scenario.WithLogger(logger),
		}
		var trace *os.File
		if s.Record != "" {
			if trace, err = createTrace(s.Record, path); err != nil {
				return err
			}
			w, err := tracking.NewTraceWriter(trace, tracking.Header{FrameRate: float32(s.FrameRate), Source: scn.Name})
			if err != nil {
				trace.Close()
				return err
			}
			options = append(options, scenario.WithRecorder(w))
		}

		report, err := scenario.Run(scn, options...)
		if trace != nil {
			trace.Close()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintln(out, report)
		if !report.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errFailed, failed, len(s.Scripts))
	}
	return nil
}

func createTrace(dir, script string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script)) + ".jsonl"
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create trace: %w", err)
	}
	return f, nil
}
