package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/cam-per/sludge/sludge/rle"
	"github.com/cam-per/sludge/sludge/spr"
)

// redBank is a v2 bank with one 8x8 red sprite, hotspot at the origin.
func redBank(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0))
	buf.WriteByte(2)
	binary.Write(&buf, binary.BigEndian, uint16(1))
	buf.WriteByte(1)
	binary.Write(&buf, binary.BigEndian, uint16(8))
	binary.Write(&buf, binary.BigEndian, uint16(8))
	binary.Write(&buf, binary.LittleEndian, int16(0))
	binary.Write(&buf, binary.LittleEndian, int16(0))
	stream, err := rle.Encode(bytes.Repeat([]byte{1}, 64), 1)
	require.NoError(t, err)
	buf.Write(stream)
	buf.Write([]byte{255, 0, 0})
	return buf.Bytes()
}

func gameDir(t *testing.T) string {
	t.Helper()
	t.Setenv("SLUDGE_LOG_LEVEL", "error")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.spr"), redBank(t), 0o644))
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().command().Run(context.Background(), append([]string{"sludge"}, args...))
}

func TestCompose(t *testing.T) {
	dir := gameDir(t)
	sceneFile := filepath.Join(dir, "scene.ini")
	require.NoError(t, os.WriteFile(sceneFile, []byte(`
[scene]
width = 32
height = 32
colour = #0000ff

[character "box"]
bank = 1
x = 10
y = 10
scale = 2
`), 0o644))
	out := filepath.Join(dir, "frame.png")

	require.NoError(t, run(t, "--data", dir, "compose", "--out", out, sceneFile))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	frame := toNRGBA(img)

	assert.Equal(t, image.Rect(0, 0, 32, 32), frame.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, frame.NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, frame.NRGBAAt(25, 25))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, frame.NRGBAAt(26, 26))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, frame.NRGBAAt(9, 10))
}

func TestComposeMissingBank(t *testing.T) {
	dir := gameDir(t)
	sceneFile := filepath.Join(dir, "scene.ini")
	require.NoError(t, os.WriteFile(sceneFile, []byte("[scene]\nwidth = 4\nheight = 4\n[character \"x\"]\nbank = 7\n"), 0o644))

	err := run(t, "--data", dir, "compose", "--out", filepath.Join(dir, "x.png"), sceneFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource 7")
}

func TestExport(t *testing.T) {
	dir := gameDir(t)
	out := filepath.Join(dir, "out")

	require.NoError(t, run(t, "--data", dir, "export", "--out", out, "--scale", "3", "--font", "1"))

	for _, name := range []string{"1_000.png", "1_000_burn.png"} {
		f, err := os.Open(filepath.Join(out, name))
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 24, cfg.Width)
		assert.Equal(t, 24, cfg.Height)
	}
}

func TestBadResourceIDs(t *testing.T) {
	dir := gameDir(t)
	require.Error(t, run(t, "--data", dir, "info"))
	require.Error(t, run(t, "--data", dir, "info", "x"))
	require.Error(t, run(t, "--data", filepath.Join(dir, "missing"), "info", "1"))
}

func TestResourceIDs(t *testing.T) {
	var ids []int
	cmd := &cli.Command{
		Name: "ids",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			ids, err = resourceIDs(cmd)
			return err
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"ids", "3", "0", "12"}))
	assert.Equal(t, []int{3, 0, 12}, ids)
}

func TestPrintBank(t *testing.T) {
	bank, err := spr.Decode(bytes.NewReader(redBank(t)), false)
	require.NoError(t, err)

	var out strings.Builder
	printBank(&out, 1, bank, true)
	assert.Equal(t,
		"resource 1: version 2, 1 sprites, font false, 2 palette entries, 64 pixels in 256 B\n"+
			"     0: 8x8 hotspot (0,0)\n",
		out.String())
}

func TestFontTable(t *testing.T) {
	table := fontTable()
	assert.Len(t, table, 224)
	assert.Equal(t, byte(' '), table[0])
	assert.Equal(t, byte(255), table[len(table)-1])
}

func TestUpscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	big := upscale(src, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 2), big.Bounds())
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, big.NRGBAAt(3, 1))
	assert.Equal(t, color.NRGBA{}, big.NRGBAAt(1, 1))
	assert.Same(t, src, upscale(src, 1))
}

func TestComposeRejectsScaleFirst(t *testing.T) {
	dir := gameDir(t)
	// the scene file does not exist, so only an early scale check can fail first
	err := run(t, "--data", dir, "compose", "--scale", "0", filepath.Join(dir, "missing.ini"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale must be at least 1")
}

func TestComposeMixedCaseCharset(t *testing.T) {
	dir := gameDir(t)
	sceneFile := filepath.Join(dir, "scene.ini")
	require.NoError(t, os.WriteFile(sceneFile, []byte("[scene]\nwidth = 4\nheight = 4\n"), 0o644))

	require.NoError(t, run(t, "--data", dir, "--charset", "CP437", "compose", "--out", filepath.Join(dir, "f.png"), sceneFile))
}
