// Package term shows frames in a true-colour terminal, two pixels per cell
// using the upper half block.
package term

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

type Presenter struct {
	screen tcell.Screen
	frame  *image.NRGBA
	step   int
	status string
}

// New initialises screen and enables mouse reporting.
func New(screen tcell.Screen) (*Presenter, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.Clear()
	return &Presenter{screen: screen, step: 1}, nil
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Presenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen)
}

func (presenter *Presenter) Close() {
	presenter.screen.Fini()
}

func (presenter *Presenter) SetStatus(s string) {
	presenter.status = s
}

// fit picks the smallest integer pixel step that fits the frame above the
// status line.
func (presenter *Presenter) fit() {
	presenter.step = 1
	if presenter.frame == nil {
		return
	}
	cols, rows := presenter.screen.Size()
	b := presenter.frame.Bounds()
	pixRows := max(2*(rows-1), 1)
	cols = max(cols, 1)
	presenter.step = max((b.Dx()+cols-1)/cols, (b.Dy()+pixRows-1)/pixRows, 1)
}

// ToFrame maps a terminal cell to the frame pixel under its top half.
func (presenter *Presenter) ToFrame(col, row int) image.Point {
	var origin image.Point
	if presenter.frame != nil {
		origin = presenter.frame.Bounds().Min
	}
	return image.Pt(origin.X+col*presenter.step, origin.Y+2*row*presenter.step)
}

func (presenter *Presenter) pixel(x, y int) tcell.Color {
	if presenter.frame == nil || !(image.Point{X: x, Y: y}).In(presenter.frame.Bounds()) {
		return tcell.ColorBlack
	}
	c := presenter.frame.NRGBAAt(x, y)
	if c.A == 0 {
		return tcell.ColorBlack
	}
	return rgb(c)
}

func rgb(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Present draws frame and the status line.
func (presenter *Presenter) Present(frame *image.NRGBA) {
	presenter.frame = frame
	presenter.fit()
	presenter.draw()
}

func (presenter *Presenter) draw() {
	cols, rows := presenter.screen.Size()
	for row := 0; row < rows-1; row++ {
		for col := 0; col < cols; col++ {
			top := presenter.ToFrame(col, row)
			style := tcell.StyleDefault.
				Foreground(presenter.pixel(top.X, top.Y)).
				Background(presenter.pixel(top.X, top.Y+presenter.step))
			presenter.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}

	status := []rune(presenter.status)
	for col := 0; col < cols; col++ {
		r := ' '
		if col < len(status) {
			r = status[col]
		}
		presenter.screen.SetContent(col, rows-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	presenter.screen.Show()
}

// Run shows frame until q, Esc or Ctrl-C. hover, when set, is called with
// the frame point under the mouse and its result becomes the status line.
func (presenter *Presenter) Run(frame *image.NRGBA, hover func(image.Point) string) {
	presenter.Present(frame)
	for {
		switch ev := presenter.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return
			}
		case *tcell.EventResize:
			presenter.screen.Sync()
			presenter.Present(frame)
		case *tcell.EventMouse:
			if hover == nil {
				continue
			}
			col, row := ev.Position()
			presenter.SetStatus(hover(presenter.ToFrame(col, row)))
			presenter.draw()
		}
	}
}
