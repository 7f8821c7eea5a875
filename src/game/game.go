package game

import (
	"context"
	"time"

	"termlife/src/universe"
)

//key bindings
const (
	KeyQuit  = 'q'
	KeyReset = 'r'
	KeyPause = 'p'
	KeyStep  = 's'
)

//Status represents the simulation status at concrete moment
type Status struct {
	Generation int
	LiveCells  int
	Paused     bool
	StepTime   time.Duration
}

//Frame is what the terminal draws on each loop iteration
type Frame struct {
	Grid    *universe.Grid
	Status  Status
	Caption string
}

//Terminal is the display the game draws to and reads keys from
type Terminal interface {
	Render(f Frame) error
	//PollKey returns the pending key press, never blocks
	PollKey() (key rune, ok bool)
}

//Game drives the simulation: polls input, renders, steps and sleeps
type Game struct {
	options  universe.Options
	term     Terminal
	grid     *universe.Grid
	paused   bool
	running  bool
	finished bool
	gen      int
	stepTime time.Duration
	newGrid  func(width int, height int) (*universe.Grid, error)
	sleep    func(time.Duration)
}

//New creates the game, a random grid of the options size is used when grid is nil
func New(o universe.Options, term Terminal, grid *universe.Grid) (*Game, error) {
	g := &Game{
		options: o,
		term:    term,
		grid:    grid,
		running: true,
		newGrid: universe.NewRandom,
		sleep:   time.Sleep,
	}
	if g.grid == nil {
		var err error
		if g.grid, err = g.newGrid(o.Width, o.Height); err != nil {
			return nil, err
		}
	}
	return g, nil
}

//Caption returns the key bindings help line
func Caption(paused bool) string {
	toggle := "pause"
	if paused {
		toggle = "play"
	}
	return "quit [q]    reset [r]   " + toggle + " [p]   step [s]"
}

func (g *Game) Grid() *universe.Grid {
	return g.grid
}

func (g *Game) Paused() bool {
	return g.paused
}

func (g *Game) Running() bool {
	return g.running
}

//Status returns current simulation status
func (g *Game) Status() Status {
	return Status{
		Generation: g.gen,
		LiveCells:  g.grid.LiveCells(),
		Paused:     g.paused,
		StepTime:   g.stepTime,
	}
}

//HandleKey applies one key press to the game state, unknown keys are ignored
func (g *Game) HandleKey(key rune) error {
	switch key {
	case KeyQuit:
		g.running = false
		g.finished = false
	case KeyReset:
		grid, err := g.newGrid(g.grid.Width(), g.grid.Height())
		if err != nil {
			return err
		}
		g.grid = grid
		g.gen = 0
		g.paused = false
	case KeyPause:
		g.paused = !g.paused
	case KeyStep:
		g.paused = true
		g.step()
	}
	return nil
}

//Tick does one loop iteration without sleeping
//the input is handled first, then the frame is rendered and the grid is stepped unless paused
func (g *Game) Tick() error {
	if key, ok := g.term.PollKey(); ok {
		if err := g.HandleKey(key); err != nil {
			return err
		}
		if !g.running {
			return nil
		}
	}
	if err := g.render(); err != nil {
		return err
	}
	if !g.paused {
		g.step()
	}
	return nil
}

//Run loops until the quit key, the MaxSteps limit or the ctx cancellation
func (g *Game) Run(ctx context.Context) error {
	for g.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.Tick(); err != nil {
			return err
		}
		if g.running && g.options.Interval > 0 {
			g.sleep(g.options.Interval)
		}
	}
	//the last generation is shown when the limit was reached
	if g.finished {
		return g.render()
	}
	return nil
}

func (g *Game) render() error {
	return g.term.Render(Frame{Grid: g.grid, Status: g.Status(), Caption: Caption(g.paused)})
}

//step advances the grid one generation and stops the game on the MaxSteps limit
func (g *Game) step() {
	start := time.Now()
	g.grid.Step()
	g.stepTime = time.Since(start)
	g.gen++
	if g.options.MaxSteps > 0 && g.gen >= g.options.MaxSteps {
		g.running = false
		g.finished = true
	}
}
