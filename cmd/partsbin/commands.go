package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-partsbin/pkg/commands"
	"github.com/goliatone/go-partsbin/pkg/components"
	"github.com/goliatone/go-partsbin/pkg/engine"
	"github.com/goliatone/go-partsbin/pkg/source"
)

// registerCommands adds the built-in commands. They read the last published
// collections, so they expect a parse to have run.
func registerCommands(eng *engine.Engine, out io.Writer) error {
	builtins := []commands.Command{
		{
			Name:        "list",
			Usage:       "list [all]",
			Description: "Print the component handles, labels and statuses.",
			Run: func(_ context.Context, args []string) error {
				return listComponents(eng, out, len(args) > 0 && args[0] == "all")
			},
		},
		{
			Name:        "files",
			Usage:       "files",
			Description: "Print the file records and the adapter each was tagged with.",
			Run: func(context.Context, []string) error {
				return listFiles(eng, out)
			},
		},
		{
			Name:        "render",
			Usage:       "render HANDLE [key=value...]",
			Description: "Render a component through its adapter.",
			Run: func(ctx context.Context, args []string) error {
				if len(args) == 0 {
					return errors.New("component handle is required")
				}
				extra, err := parseAssignments(args[1:])
				if err != nil {
					return err
				}
				html, err := renderComponent(ctx, eng, args[0], extra)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, html)
				return err
			},
		},
	}
	for _, cmd := range builtins {
		if _, err := eng.AddCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func listComponents(eng *engine.Engine, out io.Writer, all bool) error {
	state := eng.Components()
	if state == nil {
		return errors.New("no components parsed")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tLABEL\tSTATUS\tADAPTER")
	state.Each(func(_ int, record any) bool {
		c, ok := record.(*components.Component)
		if !ok || (c.Hidden && !all) {
			return true
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Handle, c.Label, c.Status, c.Adapter)
		return true
	})
	return tw.Flush()
}

func listFiles(eng *engine.Engine, out io.Writer) error {
	state := eng.Files()
	if state == nil {
		return errors.New("no files parsed")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSIZE\tADAPTER")
	state.Each(func(_ int, record any) bool {
		if file, ok := record.(*source.File); ok {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", file.RelPath, file.Size, file.MetaString(components.MetaAdapter))
		}
		return true
	})
	return tw.Flush()
}

func renderComponent(ctx context.Context, eng *engine.Engine, handle string, extra map[string]any) (string, error) {
	state := eng.Components()
	if state == nil {
		return "", errors.New("no components parsed")
	}
	component, ok := components.Find(state.ToArray(), handle)
	if !ok {
		return "", fmt.Errorf("component %q not found", handle)
	}
	if component.Adapter == "" {
		return component.View, nil
	}
	out, err := state.Invoke(ctx, "render."+component.Adapter, component.Handle, extra)
	if err != nil {
		return "", err
	}
	html, _ := out.(string)
	return html, nil
}

func parseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[key] = value
	}
	return out, nil
}
