// Package scenefile reads ini scene descriptions used by the command line
// tool to put a backdrop, a depth map and some characters on screen.
package scenefile

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

type Scene struct {
	Width, Height int
	// Backdrop is a PNG path relative to the scene file. Without one the
	// backdrop is filled with Colour.
	Backdrop string
	Colour   color.NRGBA
	// ZBuffer is a depth map resource id, -1 for none.
	ZBuffer          int
	CameraX, CameraY int
	LightMap         string
	// LightMapMode is empty when the file leaves it to the tool's default.
	LightMapMode string

	Characters []Character
	Texts      []Text
}

type Character struct {
	Name         string
	Bank         int
	Frame        int
	X, Y         float64
	Scale        float64
	Floaty       int
	Mirror       bool
	NoZBuffer    bool
	NoLight      bool
	FixToScreen  bool
	Rectangular  bool
	Transparency int
	ColourMix    int
}

// Text is a string stamped into the backdrop with a font bank.
type Text struct {
	Name    string
	Font    int
	Table   string
	Spacing int
	X, Y    int
	Text    string
	// Mode is "paste" (palette colour) or "burn" (Colour). An empty Table
	// maps the glyphs to bytes 32..255 of the configured code page.
	Mode   string
	Colour color.NRGBA
}

// Comments need a space before them so "#rrggbb" colours survive.
var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines:   true,
	SpaceBeforeInlineComment:  true,
	UnescapeValueDoubleQuotes: true,
}

// Load parses a scene file. source is a path or the file contents as
// []byte, as accepted by ini.
func Load(source any) (*Scene, error) {
	file, err := ini.LoadSources(loadOptions, source)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	return parse(file)
}

func parse(file *ini.File) (*Scene, error) {
	sec, err := file.GetSection("scene")
	if err != nil {
		return nil, fmt.Errorf("scenefile: missing [scene] section")
	}

	s := &Scene{
		Width:        sec.Key("width").MustInt(0),
		Height:       sec.Key("height").MustInt(0),
		Backdrop:     sec.Key("backdrop").String(),
		ZBuffer:      sec.Key("zbuffer").MustInt(-1),
		CameraX:      sec.Key("camera_x").MustInt(0),
		CameraY:      sec.Key("camera_y").MustInt(0),
		LightMap:     sec.Key("lightmap").String(),
		LightMapMode: strings.ToLower(sec.Key("lightmap_mode").String()),
	}
	if s.Colour, err = parseColour(sec.Key("colour").MustString("#000000")); err != nil {
		return nil, err
	}
	if s.Width < 0 || s.Height < 0 {
		return nil, fmt.Errorf("scenefile: negative scene size %dx%d", s.Width, s.Height)
	}
	if s.Backdrop == "" && (s.Width == 0 || s.Height == 0) {
		return nil, fmt.Errorf("scenefile: scene without backdrop needs width and height")
	}

	for _, sec := range file.Sections() {
		kind, name := sectionName(sec.Name())
		switch kind {
		case "character":
			c, err := parseCharacter(name, sec)
			if err != nil {
				return nil, err
			}
			s.Characters = append(s.Characters, c)
		case "text":
			t, err := parseText(name, sec)
			if err != nil {
				return nil, err
			}
			s.Texts = append(s.Texts, t)
		}
	}
	return s, nil
}

// sectionName splits `character "hero"` into its kind and quoted name.
func sectionName(raw string) (kind, name string) {
	kind, name, _ = strings.Cut(raw, " ")
	kind = strings.ToLower(kind)
	name = strings.TrimSpace(name)
	if unquoted, err := strconv.Unquote(name); err == nil {
		name = unquoted
	}
	return kind, name
}

func parseCharacter(name string, sec *ini.Section) (Character, error) {
	bank, err := sec.Key("bank").Int()
	if err != nil {
		return Character{}, fmt.Errorf("scenefile: character %q: bank: %w", name, err)
	}
	c := Character{
		Name:         name,
		Bank:         bank,
		Frame:        sec.Key("frame").MustInt(0),
		X:            sec.Key("x").MustFloat64(0),
		Y:            sec.Key("y").MustFloat64(0),
		Scale:        sec.Key("scale").MustFloat64(1),
		Floaty:       sec.Key("floaty").MustInt(0),
		Mirror:       sec.Key("mirror").MustBool(false),
		NoZBuffer:    sec.Key("nozbuffer").MustBool(false),
		NoLight:      sec.Key("nolight").MustBool(false),
		FixToScreen:  sec.Key("fixtoscreen").MustBool(false),
		Rectangular:  sec.Key("rectangular").MustBool(false),
		Transparency: sec.Key("transparency").MustInt(0),
		ColourMix:    sec.Key("colourmix").MustInt(0),
	}
	if c.Transparency < 0 || c.Transparency > 255 || c.ColourMix < 0 || c.ColourMix > 255 {
		return Character{}, fmt.Errorf("scenefile: character %q: transparency and colourmix are 0..255", name)
	}
	return c, nil
}

func parseText(name string, sec *ini.Section) (Text, error) {
	font, err := sec.Key("font").Int()
	if err != nil {
		return Text{}, fmt.Errorf("scenefile: text %q: font: %w", name, err)
	}
	t := Text{
		Name:    name,
		Font:    font,
		Table:   sec.Key("table").String(),
		Spacing: sec.Key("spacing").MustInt(1),
		X:       sec.Key("x").MustInt(0),
		Y:       sec.Key("y").MustInt(0),
		Text:    sec.Key("text").String(),
		Mode:    strings.ToLower(sec.Key("mode").MustString("paste")),
	}
	if t.Mode != "paste" && t.Mode != "burn" {
		return Text{}, fmt.Errorf("scenefile: text %q: unknown mode %q", name, t.Mode)
	}
	if t.Colour, err = parseColour(sec.Key("colour").MustString("#ffffff")); err != nil {
		return Text{}, err
	}
	return t, nil
}

func parseColour(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("scenefile: bad colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("scenefile: bad colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
