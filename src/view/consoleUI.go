package view

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"termlife/src/game"
	"termlife/src/universe"
)

const (
	keyBufferSize   = 16
	minWindowHeight = 9
	minWindowWidth  = 12
	headerText      = "Conway's Game of Life"
)

type keyBinding struct {
	key  interface{}
	name string
	//the rune handed to the game
	forward rune
}

//snapshot is a frame converted to text
type snapshot struct {
	field   string
	status  game.Status
	caption string
}

//ConsoleUI is the interactive full screen terminal
//the key presses are queued for the game, the frames are drawn by the gocui main loop
type ConsoleUI struct {
	g       *gocui.Gui
	options universe.Options
	k       []keyBinding
	keys    chan rune
	//last is owned by the gocui goroutine
	last snapshot
	//latest and pending are shared with the game goroutine,
	//at most one Update is queued, it draws the latest frame
	frame struct {
		sync.Mutex
		latest  snapshot
		pending bool
	}
	update    func(func(*gocui.Gui) error)
	closeOnce sync.Once

	liveFiller string
	deadFiller string
}

var (
	modeDescr = map[bool]string{
		false: aurora.Colorize("running", aurora.CyanFg).String(),
		true:  aurora.Colorize("paused", aurora.BlueFg).String(),
	}
)

//NewConsoleUI switches the terminal to the full screen mode
//the caller must Close the ui to restore the terminal
func NewConsoleUI(o universe.Options) (*ConsoleUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize terminal")
	}

	t := &ConsoleUI{
		g:          g,
		options:    o,
		update:     g.Update,
		keys:       make(chan rune, keyBufferSize),
		liveFiller: aurora.Green(string(universe.Glyph(universe.Live))).String(),
		deadFiller: string(universe.Glyph(universe.Dead)),
	}
	t.k = keyBindings()
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

func keyBindings() []keyBinding {
	return []keyBinding{
		{gocui.KeyCtrlC, "^C", game.KeyQuit},
		{game.KeyQuit, "q", game.KeyQuit},
		{game.KeyReset, "r", game.KeyReset},
		{game.KeyPause, "p", game.KeyPause},
		{game.KeyStep, "s", game.KeyStep},
	}
}

func (t *ConsoleUI) initKeyBindings(k []keyBinding) error {
	for _, kb := range k {
		r := kb.forward
		if err := t.g.SetKeybinding("", kb.key, gocui.ModNone, func(_ *gocui.Gui, _ *gocui.View) error {
			t.pushKey(r)
			return nil
		}); err != nil {
			return errors.Wrapf(err, "failed to bind key %v", kb.name)
		}
	}
	return nil
}

//pushKey queues the key, the key is dropped when the game is behind
func (t *ConsoleUI) pushKey(r rune) {
	select {
	case t.keys <- r:
	default:
	}
}

//PollKey returns the next queued key, never blocks
func (t *ConsoleUI) PollKey() (rune, bool) {
	select {
	case r := <-t.keys:
		return r, true
	default:
		return 0, false
	}
}

//Render converts the frame to text in the caller goroutine and hands it to the gocui main loop
//frames coming faster than the main loop draws them replace each other
func (t *ConsoleUI) Render(f game.Frame) error {
	s := snapshot{field: f.Grid.Render(), status: f.Status, caption: f.Caption}
	t.frame.Lock()
	t.frame.latest = s
	schedule := !t.frame.pending
	t.frame.pending = true
	t.frame.Unlock()
	if schedule {
		t.update(func(g *gocui.Gui) error {
			t.last = t.takeFrame()
			return t.draw(g)
		})
	}
	return nil
}

//takeFrame returns the latest frame and lets the next Render queue an update
func (t *ConsoleUI) takeFrame() snapshot {
	t.frame.Lock()
	defer t.frame.Unlock()
	t.frame.pending = false
	return t.frame.latest
}

//Start runs the gocui main loop until Stop is called
func (t *ConsoleUI) Start() error {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return errors.Wrap(err, "terminal main loop failed")
	}
	return nil
}

//Stop asks the main loop to quit, returns immediately
func (t *ConsoleUI) Stop() {
	t.update(func(*gocui.Gui) error {
		return gocui.ErrQuit
	})
}

//Close restores the terminal, can be called more than once
func (t *ConsoleUI) Close() {
	t.closeOnce.Do(t.g.Close)
}

//draw writes the last snapshot to the views which exist at the moment
func (t *ConsoleUI) draw(g *gocui.Gui) error {
	if v, err := g.View("field"); err == nil {
		maxW, maxH := v.Size()
		v.Clear()
		_, _ = fmt.Fprint(v, t.renderField(t.last.field, maxW, maxH))
	}
	if v, err := g.View("configuration"); err == nil {
		v.Clear()
		_, _ = fmt.Fprint(v, t.renderConfiguration(t.options))
	}
	if v, err := g.View("status"); err == nil {
		v.Clear()
		_, _ = fmt.Fprint(v, t.renderStatus(t.last.status))
	}
	if v, err := g.View("help"); err == nil {
		v.Clear()
		_, _ = fmt.Fprint(v, t.renderHelp(t.last.caption))
	}
	return nil
}

//renderField clips the rendered grid to the view area and colorizes the cells
func (t *ConsoleUI) renderField(field string, maxW int, maxH int) string {
	if field == "" || maxW <= 0 || maxH <= 0 {
		return ""
	}
	lines := strings.Split(field, "\n")
	crop := len(lines) > maxH || len(lines[0]) > maxW

	var b bytes.Buffer
	for i, l := range lines {
		//discard the data outside the view area
		if i >= maxH {
			break
		}
		if i != 0 {
			b.WriteByte('\n')
		}
		if crop && i == maxH-1 {
			b.WriteString(aurora.Red("The grid is larger than the viewing area").String())
			break
		}
		if len(l) > maxW {
			l = l[:maxW]
		}
		for j := 0; j < len(l); j++ {
			switch l[j] {
			case universe.Glyph(universe.Live):
				b.WriteString(t.liveFiller)
			case universe.Glyph(universe.Dead):
				b.WriteString(t.deadFiller)
			default:
				b.WriteByte(l[j])
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderConfiguration(o universe.Options) string {
	maxSteps := "unlimited"
	if o.MaxSteps > 0 {
		maxSteps = fmt.Sprintf("%v steps", o.MaxSteps)
	}
	return strings.Join([]string{
		t.renderProp("Dimension", "%v x %v", o.Width, o.Height),
		t.renderProp("Interval", "%v", o.Interval),
		t.renderProp("Iterations", "%v", maxSteps),
	}, "  ")
}

func (t *ConsoleUI) renderStatus(s game.Status) string {
	return strings.Join([]string{
		t.renderProp("Generation", "%v", s.Generation),
		t.renderProp("Live cells", "%v", s.LiveCells),
		t.renderProp("Step time", "%v", s.StepTime.Round(time.Microsecond)),
		t.renderProp("Mode", "%v", modeDescr[s.Paused]),
	}, "  ")
}

//renderHelp highlights the keys of the caption
func (t *ConsoleUI) renderHelp(caption string) string {
	pairs := make([]string, 0, len(t.k)*2)
	for _, kb := range t.k {
		if kb.key == gocui.KeyCtrlC {
			continue
		}
		bracketed := "[" + kb.name + "]"
		pairs = append(pairs, bracketed, aurora.Green(bracketed).String())
	}
	return " " + strings.NewReplacer(pairs...).Replace(caption)
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

//layout is called by gocui on every redraw, including the terminal resize
func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minWindowHeight || maxX < minWindowWidth {
		if _, err := t.headerLayout(g, maxY, "Terminal too small"); err != nil && err != gocui.ErrUnknownView {
			return err
		}
		_ = g.DeleteView("field")
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("help")
		return nil
	}
	if _, err := t.headerLayout(g, 1, headerText); err != nil && err != gocui.ErrUnknownView {
		return err
	}

	if v, err := g.SetView("field", 0, 1, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Grid"
		v.Frame = true
	}

	if v, err := g.SetView("configuration", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
	}

	if v, err := g.SetView("status", -1, maxY-4, maxX, maxY-2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
	}

	if v, err := g.SetView("help", -1, maxY-3, maxX, maxY-1); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
	}

	//the view sizes may have changed, the field is clipped again
	return t.draw(g)
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprint(v, strings.Repeat(" ", pad)+text)
	}
	return
}
