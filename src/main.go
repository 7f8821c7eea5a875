package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"termlife/src/game"
	"termlife/src/universe"
	"termlife/src/view"
)

//DefBatchSteps limits the batch run when no maxSteps is given
const DefBatchSteps = 100

type EnvOptions struct {
	batch      bool
	configFile string
	pattern    string
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("termlife: ")

	eo, uo, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := run(eo, uo); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

//parseOptions loads the config file first, the flags given on the command line override it
func parseOptions(args []string) (eo *EnvOptions, uo *universe.Options, err error) {
	eo = &EnvOptions{}
	o := universe.DefaultOptions
	uo = &o

	if fn := configFileArg(args); fn != "" {
		if *uo, err = universe.LoadOptions(fn); err != nil {
			return nil, nil, err
		}
	}

	p := flaggy.NewParser("termlife")
	p.Description = "Conway's Game of Life on a toroidal grid in the terminal"
	p.ShowHelpOnUnexpected = true
	p.String(&eo.configFile, "c", "config", "JSON file with the options, flags take precedence")
	p.Int(&uo.Width, "x", "width", "Width of the grid")
	p.Int(&uo.Height, "y", "height", "Height of the grid")
	p.Duration(&uo.Interval, "i", "interval", "Interval between the frames, for example 150ms")
	p.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	p.String(&eo.pattern, "f", "pattern", "Pattern file with 0/1 rows, sets the grid size")
	p.Bool(&eo.batch, "b", "batch", "Print the frames without the interactive terminal")

	if err = p.ParseArgs(args); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse flags")
	}

	if eo.batch && uo.MaxSteps == 0 {
		uo.MaxSteps = DefBatchSteps
	}
	return eo, uo, nil
}

//configFileArg finds the config file flag before the flags are parsed,
//so the file values become the defaults the flags are applied to
func configFileArg(args []string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return ""
		case a == "-c" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		case strings.HasPrefix(a, "-c="):
			return strings.TrimPrefix(a, "-c=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

//loadPattern reads the initial grid from the pattern file
func loadPattern(fn string) (*universe.Grid, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read pattern file: %v", fn)
	}
	g, err := universe.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse pattern file: %v", fn)
	}
	return g, nil
}

func run(eo *EnvOptions, uo *universe.Options) error {
	var grid *universe.Grid
	if eo.pattern != "" {
		var err error
		if grid, err = loadPattern(eo.pattern); err != nil {
			return err
		}
		uo.Width, uo.Height = grid.Width(), grid.Height()
	}
	if err := uo.Validate(); err != nil {
		return err
	}

	if eo.batch {
		return runBatch(*uo, grid)
	}
	return runInteractive(*uo, grid)
}

func runBatch(o universe.Options, grid *universe.Grid) error {
	out := view.NewConsoleOut(os.Stdout)
	g, err := game.New(o, out, grid)
	if err != nil {
		return err
	}
	out.PrintOptions(o)
	if err := g.Run(context.Background()); err != nil {
		return err
	}
	fmt.Println("Finished.")
	return nil
}

//runInteractive runs the gocui main loop and the game loop side by side
//the game owns the grid, the ui only draws the frames and queues the keys
func runInteractive(o universe.Options, grid *universe.Grid) error {
	ui, err := view.NewConsoleUI(o)
	if err != nil {
		return err
	}
	//the terminal is restored on every path out of here, panics included
	defer ui.Close()

	g, err := game.New(o, ui, grid)
	if err != nil {
		return err
	}

	//a signal cancels the game loop, which stops the ui, so the deferred Close still runs
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	err = runLoops(ctx, ui.Start, ui.Stop, g.Run)
	if ctx.Err() != nil {
		return errors.New("terminated by signal")
	}
	return err
}

//runLoops runs the terminal main loop and the game loop until both end
//the game loop is canceled when the terminal fails, the terminal is stopped when the game ends
func runLoops(ctx context.Context, start func() error, stop func(), run func(context.Context) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		defer recoverError(&err, "terminal main loop")
		return start()
	})
	eg.Go(func() (err error) {
		defer stop()
		defer recoverError(&err, "game loop")
		return run(ctx)
	})
	return eg.Wait()
}

//recoverError turns a panic of the goroutine into its error,
//an unrecovered panic would exit before the terminal is restored
func recoverError(err *error, what string) {
	if r := recover(); r != nil {
		*err = errors.Errorf("%v failed: %v", what, r)
	}
}
