package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	partsbin "github.com/goliatone/go-partsbin"
	"github.com/goliatone/go-partsbin/pkg/components"
	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/engine"
	"github.com/goliatone/go-partsbin/pkg/events"
	"github.com/goliatone/go-partsbin/pkg/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{out: os.Stdout, errOut: os.Stderr, prompter: surveyPrompter{pageSize: 15}}
	err := a.run(ctx, os.Args[1:])
	stop()
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

type app struct {
	out      io.Writer
	errOut   io.Writer
	prompter prompter
}

func (a *app) run(ctx context.Context, args []string) error {
	opts, exit, err := parseFlags(args, a.out)
	if err != nil || exit {
		return err
	}
	logger := newLogger(opts.logLevel, opts.logFormat, a.errOut)

	settings := map[string]any{}
	if opts.configPath != "" {
		settings, err = config.LoadFile(opts.configPath)
		if err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
	}
	store := config.NewStore(settings)

	sources := append(stringList(store, "sources"), opts.sources...)
	if len(sources) == 0 {
		return &ExitError{Code: 2, Message: "at least one -src (or a sources setting) is required"}
	}

	reader, err := newReader(ctx, store, sources)
	if err != nil {
		return err
	}
	engineOptions := []engine.Option{engine.WithLogger(logger), engine.WithReader(reader)}
	var registry *prometheus.Registry
	if opts.metricsAddr != "" {
		registry = prometheus.NewRegistry()
		engineOptions = append(engineOptions, engine.WithMetrics(registry))
	}

	eng, err := partsbin.NewLibrary(partsbin.LibraryConfig{
		Sources:        sources,
		TemplateDir:    opts.templates,
		ViewExtensions: stringList(store, "components.view_extensions"),
		DefaultStatus:  store.GetString("components.default_status", ""),
	}, engineOptions...)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if len(settings) > 0 {
		if _, err := eng.Configure(settings); err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
	}
	if _, ok := store.Get("log.level"); !ok {
		eng.MustConfigure(map[string]any{"log.level": opts.logLevel})
	}
	if err := registerCommands(eng, a.out); err != nil {
		return err
	}

	if registry != nil {
		stopMetrics := serveMetrics(opts.metricsAddr, registry, logger)
		defer stopMetrics()
	}

	if _, err := eng.Parse(ctx); err != nil {
		return err
	}

	switch {
	case opts.watch:
		return a.watch(ctx, eng)
	case opts.interactive:
		return a.interactive(ctx, eng)
	default:
		return eng.Commands().Run(ctx, opts.command, opts.args)
	}
}

func (a *app) watch(ctx context.Context, eng *engine.Engine) error {
	handle, err := eng.Watch(ctx, nil, func(change source.Change) {
		if _, err := eng.Parse(ctx); err == nil {
			eng.Log("components re-parsed", events.LevelInfo, map[string]any{"path": change.Path, "op": change.Op})
		}
	})
	if err != nil {
		return err
	}
	eng.Log("watching sources", events.LevelInfo, map[string]any{"sources": eng.Sources()})

	select {
	case <-ctx.Done():
		handle.Stop()
		return nil
	case <-handle.Done():
		return handle.Err()
	}
}

func (a *app) interactive(ctx context.Context, eng *engine.Engine) error {
	var handles, labels []string
	eng.Components().Each(func(_ int, record any) bool {
		if c, ok := record.(*components.Component); ok && !c.Hidden {
			handles = append(handles, c.Handle)
			labels = append(labels, fmt.Sprintf("%s (%s)", c.Label, c.Handle))
		}
		return true
	})

	idx, err := a.prompter.Select(ctx, "Component to render", labels)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(handles) {
		return errors.New("no component selected")
	}
	html, err := renderComponent(ctx, eng, handles[idx], nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, html)
	return err
}

func newReader(ctx context.Context, store *config.Store, sources []string) (source.Reader, error) {
	var remote source.Reader
	for _, src := range sources {
		if !source.IsS3(src) {
			continue
		}
		client, err := source.NewS3Client(ctx, source.S3Config{
			Region:    store.GetString("s3.region", ""),
			Endpoint:  store.GetString("s3.endpoint", ""),
			PathStyle: store.GetBool("s3.path_style", false),
		})
		if err != nil {
			return nil, fmt.Errorf("partsbin: s3 client: %w", err)
		}
		remote = source.NewS3Reader(client)
		break
	}
	return source.NewMultiReader(source.NewFSReader(), remote), nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func stringList(store *config.Store, key string) []string {
	raw, ok := store.Get(key)
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}
