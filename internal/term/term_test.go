package term

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T, w, h int) (tcell.SimulationScreen, *Presenter) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	presenter, err := New(sim)
	require.NoError(t, err)
	t.Cleanup(presenter.Close)
	sim.SetSize(w, h)
	return sim, presenter
}

func TestPresentHalfBlocks(t *testing.T) {
	sim, presenter := newSim(t, 4, 3)

	frame := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	frame.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	frame.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	presenter.SetStatus("hi")
	presenter.Present(frame)

	cells, w, h := sim.GetContents()
	require.Equal(t, 4, w)
	require.Equal(t, 3, h)

	fg, bg, _ := cells[0].Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
	assert.Equal(t, string(halfBlock), string(cells[0].Runes))

	fg, bg, _ = cells[1].Style.Decompose()
	assert.Equal(t, tcell.ColorBlack, fg)
	assert.Equal(t, tcell.ColorBlack, bg)

	assert.Equal(t, "h", string(cells[2*w].Runes))
	assert.Equal(t, "i", string(cells[2*w+1].Runes))
}

func TestFitAndMapping(t *testing.T) {
	_, presenter := newSim(t, 10, 6)

	presenter.Present(image.NewNRGBA(image.Rect(0, 0, 40, 20)))
	require.Equal(t, 4, presenter.step)
	assert.Equal(t, image.Pt(8, 8), presenter.ToFrame(2, 1))
}
