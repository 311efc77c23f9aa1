package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/rank"
	"gopkg.in/natefinch/lumberjack.v2"
)

const usage = `Usage: docoutline <command> [flags]

Commands:
  outline   write <stem>.json with the title and headings of every document in -in
  analyze   rank the sections of every collection in -in against its persona and job
  serve     start the HTTP API
`

type options struct {
	command string
	inDir   string
	outDir  string
	topN    int
}

func main() {
	if err := config.LoadEnvFile(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "docoutline: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	opts, err := parseArgs(os.Args[1:], cfg)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "docoutline: %v\n", err)
		}
		os.Exit(2)
	}
	if opts.topN > 0 {
		cfg.TopN = opts.topN
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "docoutline: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog := newLogger(cfg, os.Stdout)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, log); err != nil {
		log.Error("docoutline failed", "command", opts.command, "error", err)
		closeLog()
		os.Exit(1)
	}
}

func envFile() string {
	if v, ok := os.LookupEnv("ENV_FILE"); ok {
		return v
	}
	return ".env"
}

func parseArgs(args []string, cfg config.Config) (options, error) {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return options{}, errors.New("missing command")
	}

	opts := options{command: args[0]}
	fs := flag.NewFlagSet("docoutline "+opts.command, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: docoutline %s [flags]\n", opts.command)
		fs.PrintDefaults()
	}

	switch opts.command {
	case "outline", "analyze":
		fs.StringVar(&opts.inDir, "in", cfg.InputDir, "Input directory")
		fs.StringVar(&opts.outDir, "out", cfg.OutputDir, "Output directory")
		if opts.command == "analyze" {
			fs.IntVar(&opts.topN, "top", cfg.TopN, "Sections to keep per collection")
		}
	case "serve":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
		return options{}, flag.ErrHelp
	default:
		fmt.Fprint(os.Stderr, usage)
		return options{}, fmt.Errorf("unknown command %q", opts.command)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.command == "analyze" && opts.topN <= 0 {
		return options{}, fmt.Errorf("-top must be positive, got %d", opts.topN)
	}
	return opts, nil
}

// newLogger writes JSON logs to w, and also to a rotating LOG_FILE when set.
func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, func()) {
	level, _ := config.ParseLevel(cfg.LogLevel)
	closeFn := func() {}
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = io.MultiWriter(w, rotating)
		closeFn = func() { rotating.Close() }
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}

func newProcessor(cfg config.Config, log *slog.Logger) (*pipeline.Processor, error) {
	personas := persona.Defaults()
	if cfg.PersonasFile != "" {
		lib, err := persona.Load(cfg.PersonasFile)
		if err != nil {
			return nil, err
		}
		personas = lib
	}

	opts := rank.DefaultOptions()
	opts.TopN = cfg.TopN
	opts.Refine = rank.RefineConfig{MaxChars: cfg.RefineMaxChars, MinOverlap: cfg.RefineMinOverlap}
	return pipeline.NewProcessor(personas, opts, cfg.Workers, log), nil
}

func run(ctx context.Context, opts options, cfg config.Config, log *slog.Logger) error {
	proc, err := newProcessor(cfg, log)
	if err != nil {
		return err
	}

	switch opts.command {
	case "outline", "analyze":
		if info, err := os.Stat(opts.inDir); err != nil || !info.IsDir() {
			return fmt.Errorf("input directory %s not found", opts.inDir)
		}
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		var report pipeline.Report
		if opts.command == "outline" {
			report, err = proc.RunOutlines(ctx, opts.inDir, opts.outDir)
		} else {
			report, err = proc.RunCollections(ctx, opts.inDir, opts.outDir, time.Now)
		}
		if err != nil {
			return err
		}
		for _, f := range report.Failures {
			log.Warn("item failed", "item", f.Item, "error", f.Err)
		}
		fmt.Printf("%s: %d processed, %d written, %d failed\n", opts.command, report.Total, report.Written, report.Failed())
		return nil

	case "serve":
		return serve(ctx, cfg, proc, log)
	}
	return fmt.Errorf("unknown command %q", opts.command)
}

func serve(ctx context.Context, cfg config.Config, proc *pipeline.Processor, log *slog.Logger) error {
	orch := pipeline.NewOrchestrator(cfg, proc, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount)
	err := httpServer.ListenAndServe()
	orch.Stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
