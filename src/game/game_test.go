package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"termlife/src/universe"
)

//fakeTerminal feeds the scripted keys one per poll and records the frames
type fakeTerminal struct {
	keys      []rune
	frames    []Frame
	rendered  []string
	renderErr error
}

func (f *fakeTerminal) Render(fr Frame) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.frames = append(f.frames, fr)
	f.rendered = append(f.rendered, fr.Grid.Render())
	return nil
}

func (f *fakeTerminal) PollKey() (rune, bool) {
	if len(f.keys) == 0 {
		return 0, false
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	//zero is a tick without a key press
	return k, k != 0
}

func testOptions() universe.Options {
	o := universe.DefaultOptions
	o.Interval = 0
	return o
}

func blinker(t *testing.T) *universe.Grid {
	t.Helper()
	g, err := universe.Parse("00000\n00000\n01110\n00000\n00000")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newTestGame(t *testing.T, term Terminal, grid *universe.Grid) *Game {
	t.Helper()
	g, err := New(testOptions(), term, grid)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewRandomGrid(t *testing.T) {
	g := newTestGame(t, &fakeTerminal{}, nil)
	if g.Grid().Width() != universe.DefWidth || g.Grid().Height() != universe.DefHeight {
		t.Fatalf("expected %v x %v grid, got %v x %v", universe.DefWidth, universe.DefHeight, g.Grid().Width(), g.Grid().Height())
	}
	if !g.Running() || g.Paused() {
		t.Fatal("game should start running and not paused")
	}
}

func TestNewInvalidSize(t *testing.T) {
	o := testOptions()
	o.Width = 0
	if _, err := New(o, &fakeTerminal{}, nil); errors.Cause(err) != universe.ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestCaption(t *testing.T) {
	if c := Caption(false); c != "quit [q]    reset [r]   pause [p]   step [s]" {
		t.Fatalf("unexpected running caption %q", c)
	}
	if c := Caption(true); c != "quit [q]    reset [r]   play [p]   step [s]" {
		t.Fatalf("unexpected paused caption %q", c)
	}
}

func TestTickRendersThenSteps(t *testing.T) {
	term := &fakeTerminal{}
	g := newTestGame(t, term, blinker(t))
	before := g.Grid().Render()

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if len(term.rendered) != 1 || term.rendered[0] != before {
		t.Fatal("the frame should show the grid before the step")
	}
	if g.Grid().Render() == before {
		t.Fatal("running game should step the grid")
	}
	if st := g.Status(); st.Generation != 1 || st.LiveCells != 3 {
		t.Fatalf("unexpected status %+v", st)
	}
	if term.frames[0].Caption != Caption(false) {
		t.Fatalf("unexpected caption %q", term.frames[0].Caption)
	}
}

func TestPauseToggle(t *testing.T) {
	term := &fakeTerminal{keys: []rune{KeyPause, 0, KeyPause}}
	g := newTestGame(t, term, blinker(t))
	start := g.Grid().Render()

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if !g.Paused() || g.Grid().Render() != start {
		t.Fatal("paused game must not step")
	}
	if term.frames[0].Caption != Caption(true) || !term.frames[0].Status.Paused {
		t.Fatal("paused frame should offer play")
	}

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if g.Grid().Render() != start {
		t.Fatal("paused game must not step without input")
	}

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if g.Paused() || g.Grid().Render() == start {
		t.Fatal("resumed game should step")
	}
}

func TestSingleStepForcesPause(t *testing.T) {
	term := &fakeTerminal{keys: []rune{KeyStep, KeyStep}}
	g := newTestGame(t, term, blinker(t))
	horizontal := g.Grid().Render()

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if !g.Paused() {
		t.Fatal("step should pause the game")
	}
	if g.Status().Generation != 1 || g.Grid().Render() == horizontal {
		t.Fatal("step should advance exactly one generation")
	}

	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if g.Status().Generation != 2 || g.Grid().Render() != horizontal {
		t.Fatal("second step should bring the blinker back")
	}
}

func TestReset(t *testing.T) {
	term := &fakeTerminal{keys: []rune{KeyPause, KeyReset}}
	g := newTestGame(t, term, blinker(t))
	var calls int
	g.newGrid = func(width int, height int) (*universe.Grid, error) {
		calls++
		return universe.NewBlank(width, height)
	}

	for i := 0; i < 2; i++ {
		if err := g.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one new grid, got %v", calls)
	}
	if g.Paused() {
		t.Fatal("reset should resume the game")
	}
	if g.Grid().Width() != 5 || g.Grid().Height() != 5 {
		t.Fatal("reset should keep the grid dimensions")
	}
	//the blank grid stepped once after the reset
	if st := g.Status(); st.Generation != 1 || st.LiveCells != 0 {
		t.Fatalf("unexpected status after reset %+v", st)
	}
}

func TestUnknownKeysIgnored(t *testing.T) {
	term := &fakeTerminal{keys: []rune{'x', 'Q', 'P', ' '}}
	g := newTestGame(t, term, blinker(t))
	for i := 0; i < 4; i++ {
		if err := g.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if !g.Running() || g.Paused() || g.Status().Generation != 4 {
		t.Fatalf("unknown keys must not change the state, status %+v", g.Status())
	}
}

func TestRunQuit(t *testing.T) {
	term := &fakeTerminal{keys: []rune{0, 0, KeyQuit}}
	g := newTestGame(t, term, blinker(t))
	var slept int
	g.options.Interval = time.Millisecond
	g.sleep = func(d time.Duration) {
		if d != time.Millisecond {
			t.Errorf("unexpected sleep %v", d)
		}
		slept++
	}

	if err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g.Running() {
		t.Fatal("game should stop on quit")
	}
	if len(term.frames) != 2 || slept != 2 {
		t.Fatalf("expected 2 frames and 2 sleeps, got %v and %v", len(term.frames), slept)
	}
}

func TestRunMaxSteps(t *testing.T) {
	term := &fakeTerminal{}
	o := testOptions()
	o.MaxSteps = 3
	g, err := New(o, term, blinker(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g.Status().Generation != 3 {
		t.Fatalf("expected 3 generations, got %v", g.Status().Generation)
	}
	//three iterations and the final generation
	if len(term.frames) != 4 || term.frames[3].Status.Generation != 3 {
		t.Fatalf("expected the last generation rendered, frames %v", len(term.frames))
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	term := &fakeTerminal{}
	g := newTestGame(t, term, blinker(t))
	g.sleep = func(time.Duration) { cancel() }
	g.options.Interval = time.Millisecond

	if err := g.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(term.frames) != 1 {
		t.Fatalf("expected one frame before cancel, got %v", len(term.frames))
	}
}

func TestRunRenderError(t *testing.T) {
	boom := errors.New("boom")
	g := newTestGame(t, &fakeTerminal{renderErr: boom}, blinker(t))
	if err := g.Run(context.Background()); errors.Cause(err) != boom {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestFrameShowsRenderedGrid(t *testing.T) {
	term := &fakeTerminal{keys: []rune{KeyPause}}
	g := newTestGame(t, term, blinker(t))
	if err := g.Tick(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(term.rendered[0], ". # # # .") {
		t.Fatalf("unexpected frame\n%v", term.rendered[0])
	}
}
