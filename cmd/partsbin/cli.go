package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-partsbin/pkg/events"
)

// ExitError carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type options struct {
	sources     []string
	configPath  string
	logLevel    string
	logFormat   string
	templates   string
	metricsAddr string
	watch       bool
	interactive bool
	command     string
	args        []string
}

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*l = append(*l, trimmed)
		}
	}
	return nil
}

// parseFlags returns the options, whether the program should exit cleanly, or
// an *ExitError.
func parseFlags(args []string, output io.Writer) (*options, bool, error) {
	flagSet := flag.NewFlagSet("partsbin", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
partsbin - parse and render a component library.

Usage:
  partsbin [options] [list | files | render HANDLE [key=value...]]

Options:
`)
		flagSet.PrintDefaults()
	}

	var sources listFlag
	flagSet.Var(&sources, "src", "Component source directory or s3://bucket/prefix. Repeatable, comma separated.")
	configPath := flagSet.String("config", "", "Settings file (.yaml, .yml, .json or .hcl).")
	logLevel := flagSet.String("log-level", "info", "Logging level: debug, info, warn or error.")
	logFormat := flagSet.String("log-format", "text", "Log output format: text or json.")
	templates := flagSet.String("templates", "", "Directory pongo2 views can include and extend from.")
	metricsAddr := flagSet.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	watch := flagSet.Bool("watch", false, "Re-parse whenever a source changes, until interrupted.")
	interactive := flagSet.Bool("interactive", false, "Pick a component to render from a prompt.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	opts := &options{
		sources:     sources,
		configPath:  strings.TrimSpace(*configPath),
		logLevel:    strings.ToLower(strings.TrimSpace(*logLevel)),
		logFormat:   strings.ToLower(strings.TrimSpace(*logFormat)),
		templates:   strings.TrimSpace(*templates),
		metricsAddr: strings.TrimSpace(*metricsAddr),
		watch:       *watch,
		interactive: *interactive,
		command:     "list",
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		opts.command = rest[0]
		opts.args = rest[1:]
	}

	if opts.logFormat != "text" && opts.logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	if _, err := events.ParseLevel(opts.logLevel); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if opts.watch && opts.interactive {
		return nil, false, &ExitError{Code: 2, Message: "-watch and -interactive cannot be combined"}
	}
	return opts, false, nil
}
