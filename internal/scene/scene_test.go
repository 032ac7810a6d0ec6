package scene

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cam-per/sludge/internal/datafile"
	"github.com/cam-per/sludge/internal/render"
	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/rle"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

const (
	redBank   = 1
	greenBank = 2
	brokenRes = 3
	depthRes  = 5
	fontBank  = 6
)

// solidBank is a v2 bank holding one w*h sprite of palette colour c.
func solidBank(t *testing.T, w, h, xhot, yhot int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0))
	buf.WriteByte(2)
	binary.Write(&buf, binary.BigEndian, uint16(1))
	buf.WriteByte(1)
	binary.Write(&buf, binary.BigEndian, uint16(w))
	binary.Write(&buf, binary.BigEndian, uint16(h))
	binary.Write(&buf, binary.LittleEndian, int16(xhot))
	binary.Write(&buf, binary.LittleEndian, int16(yhot))
	stream, err := rle.Encode(bytes.Repeat([]byte{1}, w*h), 1)
	require.NoError(t, err)
	buf.Write(stream)
	buf.Write([]byte{c.R, c.G, c.B})
	return buf.Bytes()
}

// depthFile puts rows from split downward in zone 1 of a two-panel map.
func depthFile(w, h, split int, thresholds ...int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Szb")
	buf.WriteByte(1)
	binary.Write(&buf, binary.BigEndian, uint16(w))
	binary.Write(&buf, binary.BigEndian, uint16(h))
	buf.WriteByte(byte(len(thresholds)))
	for _, th := range thresholds {
		binary.Write(&buf, binary.BigEndian, uint16(th))
	}
	zones := make([]byte, w*h)
	for i := split * w; i < len(zones); i++ {
		zones[i] = 1
	}
	buf.Write(rle.EncodeZones(zones))
	return buf.Bytes()
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func newTestContext(t *testing.T, w, h int) *Context {
	t.Helper()
	fsys := fstest.MapFS{
		"1.spr": {Data: solidBank(t, 8, 8, 0, 0, red)},
		"2.spr": {Data: solidBank(t, 2, 2, 0, 0, color.NRGBA{G: 255, A: 255})},
		"3.spr": {Data: []byte{0, 0, 9}},
		"5.zbu": {Data: depthFile(32, 32, 16, 20, 0)},
		"6.spr": {Data: solidBank(t, 1, 1, 0, 0, red)},
	}
	return New(datafile.NewSource(fsys), Options{
		Logger: zaptest.NewLogger(t),
		Width:  w,
		Height: h,
	})
}

func regionIs(t *testing.T, img *image.NRGBA, rect image.Rectangle, inside, outside color.NRGBA) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			want := outside
			if image.Pt(x, y).In(rect) {
				want = inside
			}
			if got := img.NRGBAAt(x, y); got != want {
				require.Equal(t, want, got, "pixel %d,%d", x, y)
			}
		}
	}
}

func TestCompositeScaledSprite(t *testing.T) {
	ctx := newTestContext(t, 32, 32)
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)

	ctx.CompositeFrame([]*Character{{Bank: bank, X: 10, Y: 10, Scale: 2}})
	regionIs(t, ctx.Target(), image.Rect(10, 10, 26, 26), red, color.NRGBA{})
}

func TestBankCache(t *testing.T) {
	ctx := newTestContext(t, 8, 8)

	first, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	again, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = ctx.LoadSpriteBank(greenBank, false)
	require.NoError(t, err)
	assert.Equal(t, []int{redBank, greenBank}, ctx.Banks())

	ctx.ForgetBank(redBank)
	fresh, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

func TestBankErrors(t *testing.T) {
	ctx := newTestContext(t, 8, 8)

	_, err := ctx.LoadSpriteBank(99, false)
	require.ErrorIs(t, err, errs.ErrResource)

	_, err = ctx.LoadSpriteBank(brokenRes, false)
	require.ErrorIs(t, err, errs.ErrFormat)
	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, brokenRes, fe.Resource)
	assert.Empty(t, ctx.Banks())

	_, err = New(nil, Options{}).LoadSpriteBank(1, false)
	require.ErrorIs(t, err, errs.ErrResource)
}

func TestReloadAll(t *testing.T) {
	ctx := newTestContext(t, 8, 8)
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	before := bank.Sprites[0].Image

	require.NoError(t, ctx.ReloadAll())

	again, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	assert.Same(t, bank, again)
	assert.NotSame(t, before, bank.Sprites[0].Image)
	assert.Equal(t, before.Pix, bank.Sprites[0].Image.Pix)
}

func TestDeferredDepthMap(t *testing.T) {
	ctx := newTestContext(t, 32, 32)

	require.NoError(t, ctx.RequestDepthMap(depthRes))
	assert.Nil(t, ctx.DepthMap())
	id, ok := ctx.Pending()
	assert.True(t, ok)
	assert.Equal(t, depthRes, id)

	activated, err := ctx.TryActivatePending()
	require.NoError(t, err)
	assert.False(t, activated)

	require.NoError(t, ctx.SetBackdrop(solid(32, 32, blue)))
	dm := ctx.DepthMap()
	require.NotNil(t, dm)
	assert.Equal(t, depthRes, dm.Resource)
	assert.Equal(t, []int{0, 20}, dm.Thresholds())
	_, ok = ctx.Pending()
	assert.False(t, ok)

	// zone 1 named threshold 0 in the file, so it lands in sorted panel 0
	assert.Equal(t, blue, dm.Panels[0].Image.NRGBAAt(0, 31))
	assert.Equal(t, blue, dm.Panels[0].Image.NRGBAAt(0, 0))

	ctx.KillDepthMap()
	assert.Nil(t, ctx.DepthMap())
}

func TestDepthMapFollowsBackdrop(t *testing.T) {
	ctx := newTestContext(t, 32, 32)
	require.NoError(t, ctx.SetBackdrop(solid(32, 32, blue)))
	require.NoError(t, ctx.RequestDepthMap(depthRes))
	first := ctx.DepthMap()
	require.NotNil(t, first)

	require.NoError(t, ctx.SetBackdrop(solid(32, 32, red)))
	rebuilt := ctx.DepthMap()
	require.NotNil(t, rebuilt)
	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, red, rebuilt.Panels[0].Image.NRGBAAt(5, 5))

	require.NoError(t, ctx.SetBackdrop(nil))
	assert.Nil(t, ctx.DepthMap())
	id, ok := ctx.Pending()
	assert.True(t, ok)
	assert.Equal(t, depthRes, id)

	// wrong size for the depth data
	err := ctx.SetBackdrop(solid(16, 16, red))
	require.ErrorIs(t, err, errs.ErrFormat)
	assert.Nil(t, ctx.DepthMap())
}

func occludingContext(t *testing.T) *Context {
	t.Helper()
	fsys := fstest.MapFS{
		"1.spr": {Data: solidBank(t, 8, 8, 0, 0, red)},
		// rows 16+ are zone 1, threshold 20; the rest is panel 0
		"5.zbu": {Data: depthFile(32, 32, 16, 0, 20)},
	}
	ctx := New(datafile.NewSource(fsys), Options{Logger: zaptest.NewLogger(t), Width: 32, Height: 32})
	require.NoError(t, ctx.SetBackdrop(solid(32, 32, blue)))
	require.NoError(t, ctx.RequestDepthMap(depthRes))
	return ctx
}

func TestDepthOcclusion(t *testing.T) {
	ctx := occludingContext(t)
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)

	// depth 12 is behind the foreground panel starting at row 16
	ctx.CompositeFrame([]*Character{{Bank: bank, X: 10, Y: 12, Scale: 1}})
	regionIs(t, ctx.Target(), image.Rect(10, 12, 18, 16), red, blue)

	// depth 20 is in front of it
	ctx.CompositeFrame([]*Character{{Bank: bank, X: 10, Y: 20, Scale: 1}})
	regionIs(t, ctx.Target(), image.Rect(10, 20, 18, 28), red, blue)

	// NoZBuffer goes to layer 0, under every panel
	ctx.CompositeFrame([]*Character{{Bank: bank, X: 10, Y: 20, Scale: 1, Extra: NoZBuffer}})
	regionIs(t, ctx.Target(), image.Rectangle{}, red, blue)
}

func TestCameraScrollsScene(t *testing.T) {
	ctx := newTestContext(t, 4, 4)
	backdrop := solid(8, 8, blue)
	backdrop.SetNRGBA(5, 6, red)
	require.NoError(t, ctx.SetBackdrop(backdrop))
	ctx.SetCamera(4, 4)

	x, y := ctx.Camera()
	assert.Equal(t, 4, x)
	assert.Equal(t, 4, y)
	w, h := ctx.SceneSize()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	ctx.CompositeFrame(nil)
	regionIs(t, ctx.Target(), image.Rect(1, 2, 2, 3), red, blue)
}

func TestDrawColour(t *testing.T) {
	ctx := newTestContext(t, 4, 4)
	lightMap := solid(32, 32, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	lightMap.SetNRGBA(3, 3, color.NRGBA{R: 255, G: 0, B: 100, A: 255})
	c := &Character{X: 3, Y: 3}

	assert.Equal(t, render.White, ctx.DrawColour(c))

	ctx.SetLightMap(lightMap, LightMapHotspot)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 100, A: 255}, ctx.DrawColour(c))

	c.ColourMix = 255
	c.Transparency = 55
	assert.Equal(t, color.NRGBA{A: 200}, ctx.DrawColour(c))

	c.ColourMix = 0
	c.Extra = NoLight
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 200}, ctx.DrawColour(c))

	c.Extra = 0
	c.X = 40
	assert.Equal(t, uint8(255), ctx.DrawColour(c).G, "outside the light map is white")

	ctx.SetLightMap(lightMap, LightMapPixel)
	c.X = 3
	assert.Equal(t, uint8(255), ctx.DrawColour(c).G)
	_, mode := ctx.LightMap()
	assert.Equal(t, LightMapPixel, mode)
}

func TestLitAndTransparentCharacters(t *testing.T) {
	ctx := newTestContext(t, 16, 16)
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	ctx.SetLightMap(solid(16, 16, color.NRGBA{R: 128, G: 128, B: 128, A: 255}), LightMapHotspot)

	ctx.CompositeFrame([]*Character{{Bank: bank, Scale: 1, Transparency: 55}})
	assert.Equal(t, color.NRGBA{R: 128, A: 200}, ctx.Target().NRGBAAt(0, 0))

	ctx.CompositeFrame([]*Character{{Bank: bank, Scale: 1, Transparency: 255}})
	assert.Equal(t, color.NRGBA{}, ctx.Target().NRGBAAt(0, 0))
}

func TestCharacterAt(t *testing.T) {
	ctx := occludingContext(t)
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)

	front := &Character{Name: "front", Bank: bank, X: 10, Y: 20, Scale: 1}
	back := &Character{Name: "back", Bank: bank, X: 12, Y: 14, Scale: 1}
	later := &Character{Name: "later", Bank: bank, X: 12, Y: 14, Scale: 1}

	assert.Same(t, front, ctx.CharacterAt(image.Pt(12, 21), []*Character{front, back}))
	assert.Same(t, back, ctx.CharacterAt(image.Pt(12, 14), []*Character{front, back}))
	assert.Same(t, later, ctx.CharacterAt(image.Pt(13, 15), []*Character{back, later}))
	assert.Nil(t, ctx.CharacterAt(image.Pt(0, 0), []*Character{front, back}))

	assert.True(t, ctx.HitTest(image.Pt(10, 20), front))
	assert.False(t, ctx.HitTest(image.Pt(18, 20), front))
	assert.False(t, ctx.HitTest(image.Pt(10, 20), &Character{}))
}

func TestFixToScreenIgnoresCamera(t *testing.T) {
	ctx := newTestContext(t, 16, 16)
	require.NoError(t, ctx.SetBackdrop(solid(64, 64, blue)))
	bank, err := ctx.LoadSpriteBank(greenBank, false)
	require.NoError(t, err)
	ctx.SetCamera(20, 20)

	c := &Character{Bank: bank, X: 1, Y: 1, Scale: 1, Extra: FixToScreen}
	ctx.CompositeFrame([]*Character{c})
	regionIs(t, ctx.Target(), image.Rect(1, 1, 3, 3), color.NRGBA{G: 255, A: 255}, blue)
	assert.True(t, ctx.HitTest(image.Pt(2, 2), c))
}

func TestPasteCharacter(t *testing.T) {
	ctx := occludingContext(t)
	original := ctx.Backdrop()
	bank, err := ctx.LoadSpriteBank(redBank, false)
	require.NoError(t, err)
	ctx.SetCamera(3, 3)

	require.NoError(t, ctx.PasteCharacter(&Character{Bank: bank, X: 0, Y: 0, Scale: 1}))
	baked := ctx.Backdrop()
	assert.NotSame(t, original, baked)
	regionIs(t, baked, image.Rect(0, 0, 8, 8), red, blue)
	regionIs(t, original, image.Rectangle{}, red, blue)

	dm := ctx.DepthMap()
	require.NotNil(t, dm)
	assert.Equal(t, red, dm.Panels[0].Image.NRGBAAt(0, 0))

	// a character behind the foreground panel is pasted under it
	require.NoError(t, ctx.PasteCharacter(&Character{Bank: bank, X: 20, Y: 12, Scale: 1}))
	assert.Equal(t, red, ctx.Backdrop().NRGBAAt(20, 15))
	assert.Equal(t, blue, ctx.Backdrop().NRGBAAt(20, 16))
}

func TestFont(t *testing.T) {
	ctx := newTestContext(t, 4, 4)
	assert.Nil(t, ctx.Font())
	require.NoError(t, ctx.SetFont(fontBank, "A", 1))

	font := ctx.Font()
	require.NotNil(t, font)
	assert.True(t, font.Bank.IsFont)
	assert.NotNil(t, font.Bank.Sprites[0].Burn)
	assert.Equal(t, 4, font.Width("AB"))

	require.ErrorIs(t, ctx.SetFont(99, "A", 0), errs.ErrResource)
}

func TestParseLightMapMode(t *testing.T) {
	for _, mode := range []LightMapMode{LightMapNone, LightMapHotspot, LightMapPixel} {
		parsed, err := ParseLightMapMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	parsed, err := ParseLightMapMode("HotSpot")
	require.NoError(t, err)
	assert.Equal(t, LightMapHotspot, parsed)

	_, err = ParseLightMapMode("sparkle")
	require.Error(t, err)
	assert.Equal(t, "LightMapMode(7)", LightMapMode(7).String())
}
