package drive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
)

// Flag defaults.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultSteps   = 200
	DefaultSeed    = 42
	DefaultTimeout = 10 * time.Second
)

// ErrHelp is returned by ParseFlags when usage was requested.
var ErrHelp = pflag.ErrHelp

// ParseFlags reads command line arguments into a Config. Usage goes to out.
func ParseFlags(name string, args []string, out io.Writer) (*Config, error) {
	config := &Config{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&config.BaseURL, "url", "u", DefaultBaseURL, "Base URL of the service")
	fs.IntVarP(&config.Steps, "steps", "n", DefaultSteps, "Number of gestures to generate")
	fs.Int64Var(&config.Seed, "seed", DefaultSeed, "Seed for the gesture script")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	fs.BoolVar(&config.Reset, "reset", false, "Reset the session before driving")
	fs.BoolVar(&config.Prepare, "prepare", false, "Prepare edits after driving and wait for the result")
	fs.StringVar(&config.ScriptFile, "script", "", "Replay a saved script instead of generating one")
	fs.StringVarP(&config.OutputFile, "output", "o", "", "Save the gesture script (.json or .yaml)")
	fs.StringVar(&config.LogFile, "log", "", "Also write logs to this file")
	fs.StringVar(&config.LogFormat, "log-format", string(logger.FormatText), "Log format: text or json")
	fs.BoolVarP(&config.Verbose, "verbose", "v", false, "Log every gesture")

	fs.Usage = func() {
		fmt.Fprintf(out, "Tier list drive tool\n\nReplays a random ranking session against a running service and\nverifies the order, item listing and property graph it reports.\n\nUsage:\n  %s [options]\n\nOptions:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if config.Steps <= 0 && config.ScriptFile == "" {
		return nil, errors.New("--steps must be positive")
	}
	if config.Timeout <= 0 {
		return nil, errors.New("--timeout must be positive")
	}
	return config, nil
}

// SetupLogging initializes the global logger on stdout and, when logFile is
// set, on that file too.
func SetupLogging(config *Config) (io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if config.LogFile != "" {
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.InitWithWriter(w, logger.Format(config.LogFormat)); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if config.Verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}
