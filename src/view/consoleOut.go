package view

import (
	"fmt"
	"io"
	"sort"

	"github.com/gosuri/uilive"

	"termlife/src/game"
	"termlife/src/universe"
)

//ConsoleOut is the non-interactive output, every frame replaces the previous one in place
type ConsoleOut struct {
	out io.Writer
	w   *uilive.Writer
}

func NewConsoleOut(out io.Writer) *ConsoleOut {
	w := uilive.New()
	w.Out = out
	return &ConsoleOut{out: out, w: w}
}

//PrintOptions prints the running configuration above the frames
func (c *ConsoleOut) PrintOptions(o universe.Options) {
	_, _ = fmt.Fprintln(c.out, "Running configuration:")
	c.printHashData(map[string]interface{}{
		"Dimension":      fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":       o.Interval,
		"Max iterations": o.MaxSteps,
	})
	_, _ = fmt.Fprintln(c.out)
}

//Render redraws the grid and the status line
//the frame is flushed here, the uilive refresh ticker is not used
func (c *ConsoleOut) Render(f game.Frame) error {
	_, _ = fmt.Fprintln(c.w, f.Grid.Render())
	_, _ = fmt.Fprintf(c.w, "Generation: %v  Live cells: %v\n", f.Status.Generation, f.Status.LiveCells)
	return c.w.Flush()
}

//PollKey never has a key, the batch run ends on the steps limit
func (c *ConsoleOut) PollKey() (rune, bool) {
	return 0, false
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.out, "  %s: %v\n", propName, d[propName])
	}
}
