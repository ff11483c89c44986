// Command gifkit edits GIF animations from the command line.
//
// Usage:
//
//	gifkit compose [options] <image>...     Combine still images into a GIF
//	gifkit crop [options] <input.gif>       Crop every frame
//	gifkit resize [options] <input.gif>     Scale the animation
//	gifkit reverse [options] <input.gif>    Play frames backwards
//	gifkit speed [options] <input.gif>      Change frame timing
//	gifkit optimize [options] <input.gif>   Shrink the file
//	gifkit split [options] <input.gif>      Write every frame as a still image
//	gifkit info <input.gif>                 Display GIF metadata
//
// Results are printed to stdout as JSON. Every command accepts -config to
// name a YAML settings file; $GIFKIT_CONFIG is used otherwise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/deepteams/gifkit/internal/config"
	"github.com/deepteams/gifkit/palette"
	"github.com/deepteams/gifkit/resample"
	"github.com/deepteams/gifkit/task"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks errors caused by bad command-line arguments.
type usageError struct{ error }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) (any, error)
}

var commands = []command{
	{"compose", "Combine still images into an animated GIF", runCompose},
	{"crop", "Crop every frame of a GIF", runCrop},
	{"resize", "Scale a GIF", runResize},
	{"reverse", "Reverse the frame order of a GIF", runReverse},
	{"speed", "Change the frame timing of a GIF", runSpeed},
	{"optimize", "Reduce the size of a GIF", runOptimize},
	{"split", "Write every frame of a GIF as a still image", runSplit},
	{"info", "Display GIF metadata", runInfo},
}

// run executes one command and returns the process exit code: 0 on
// success, 1 on failure and 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		printUsage(stderr)
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fail(stderr, fmt.Errorf("unknown command %q", args[0]))
		printUsage(stderr)
		return 2
	}

	e := &env{stderr: stderr}
	res, err := cmd.run(ctx, e, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		fail(stderr, err)
		return 2
	}
	if err != nil {
		fail(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fail(stderr, err)
		return 1
	}
	if e.cfg != nil {
		status(stderr, "%s: done", cmd.name)
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, c := range commands {
		fmt.Fprintf(w, "  gifkit %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, `
Run "gifkit <command> -h" for command-specific options.`)
}

var (
	errColor    = color.New(color.FgRed, color.Bold)
	statusColor = color.New(color.FgGreen)
)

func fail(w io.Writer, err error) {
	errColor.Fprintf(w, "gifkit: %v\n", err)
}

func status(w io.Writer, format string, args ...any) {
	statusColor.Fprintf(w, format+"\n", args...)
}

// env carries the configuration and task runner for one invocation.
type env struct {
	stderr io.Writer
	cfg    *config.Config
	runner *task.Runner
}

// setup loads the configuration named by -config and builds the runner.
func (e *env) setup(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	r, err := resample.ParseBackend(cfg.Resample.Backend)
	if err != nil {
		return err
	}
	q, err := palette.ParseQuantizer(cfg.Optimize.Quantizer)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.runner = task.NewRunner(cfg.Logger(e.stderr), r, q)
	return nil
}

// newFlagSet returns a flag set that reports errors instead of exiting
// and registers the shared -config flag.
func newFlagSet(e *env, name, args string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: gifkit %s [options] %s\n", name, args)
		fs.PrintDefaults()
	}
	cfg := fs.String("config", "", "YAML settings file (default $"+config.EnvPath+")")
	return fs, cfg
}

// parse parses args, loads the configuration and returns the names of the
// flags given explicitly.
func (e *env) parse(fs *flag.FlagSet, cfgPath *string, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, usageError{err}
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := e.setup(*cfgPath); err != nil {
		return nil, err
	}
	return set, nil
}
