package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/metailurini/lflist/internal/stress"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "workers", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'w'},
		{Long: "operations", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'n'},
		{Long: "mode", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 || len(arguments) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--config-file=FILE] [--workers=N] [--operations=N] [--mode=mixed|partitioned|overlapping]", program)
	}

	cfg, err := getConfiguration(options)
	if nil != err {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	if err := logger.Initialise(cfg.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("shutting down…")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("configuration: %+v", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		log.Infof("received signal: %v", sig)
		cancel()
	}()

	result, err := stress.Run(ctx, cfg, logger.New("stress"))
	if nil != result {
		printResult(result)
	}
	if nil != err {
		log.Criticalf("run failed: %s", err)
		exitwithstatus.Message("%s: %s", program, err)
	}
}

// getConfiguration starts from the defaults, applies the configuration file
// if one was given, then the command line overrides.
func getConfiguration(options map[string][]string) (*stress.Configuration, error) {
	cfg := stress.DefaultConfiguration()

	baseDirectory, err := os.Getwd()
	if nil != err {
		return nil, err
	}

	if files := options["config-file"]; len(files) > 0 {
		if len(files) != 1 {
			return nil, fmt.Errorf("only one config-file option is allowed, %d were given", len(files))
		}
		fileName, err := filepath.Abs(filepath.Clean(files[0]))
		if nil != err {
			return nil, err
		}
		if err := stress.ParseConfigurationFile(fileName, cfg); nil != err {
			return nil, err
		}
		baseDirectory = filepath.Dir(fileName)
	}

	for name, target := range map[string]*int{
		"workers":    &cfg.Workers,
		"operations": &cfg.Operations,
	} {
		values := options[name]
		if len(values) == 0 {
			continue
		}
		n, err := strconv.Atoi(values[len(values)-1])
		if nil != err {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		*target = n
	}
	if modes := options["mode"]; len(modes) > 0 {
		cfg.Mode = modes[len(modes)-1]
	}

	if len(options["verbose"]) > 0 {
		cfg.Logging.Console = true
		if nil == cfg.Logging.Levels {
			cfg.Logging.Levels = make(map[string]string)
		}
		cfg.Logging.Levels[logger.DefaultTag] = "debug"
	}

	if !filepath.IsAbs(cfg.Logging.Directory) {
		cfg.Logging.Directory = filepath.Join(baseDirectory, cfg.Logging.Directory)
	}
	if err := os.MkdirAll(cfg.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func printResult(result *stress.Result) {
	fmt.Printf("mode:          %s\n", result.Mode)
	fmt.Printf("workers:       %d\n", result.Workers)
	fmt.Printf("operations:    %d\n", result.Operations)
	fmt.Printf("inserts:       %d\n", result.Inserts)
	fmt.Printf("deletes:       %d\n", result.Deletes)
	fmt.Printf("search hits:   %d\n", result.SearchHits)
	fmt.Printf("remaining:     %d\n", result.Remaining)
	fmt.Printf("elapsed:       %s\n", result.Elapsed)
	if result.Interrupted {
		fmt.Printf("interrupted:   true\n")
	}

	s := result.Stats
	fmt.Printf("insert CAS:    %d successes, %d retries\n", s.InsertCASSuccesses, s.InsertCASRetries)
	fmt.Printf("flag retries:  %d\n", s.FlagCASRetries)
	fmt.Printf("mark retries:  %d\n", s.MarkCASRetries)
	fmt.Printf("helps:         %d\n", s.Helps)
	fmt.Printf("unlinks:       %d\n", s.Unlinks)
	fmt.Printf("backlinks:     %d\n", s.BacklinkSteps)
}
