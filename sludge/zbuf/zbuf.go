// Package zbuf decodes SLUDGE depth maps.
//
// A depth map splits the scene backdrop into at most 16 panels, each a
// scene-sized image holding only the backdrop pixels of one depth band.
// Drawing the panels in threshold order, with characters bucketed between
// them, lets characters walk behind scenery without a per-pixel depth test.
//
// Zone 0 in the file means "base layer" and lands in sorted panel 0, so the
// panel listed first in the file never receives pixels of its own.
package zbuf

import (
	"image"
	"io"
	"sort"

	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/rle"
	"github.com/cam-per/sludge/utils"
)

const (
	op = "zbuf"

	MaxPanels = 16

	legacyWidth  = 640
	legacyHeight = 480
)

var magic = [3]byte{'S', 'z', 'b'}

type Panel struct {
	Threshold int
	Image     *image.NRGBA
}

type DepthMap struct {
	Resource      int
	Width, Height int
	// Panels are sorted ascending by threshold. Panel 0 also holds every
	// pixel no other panel claims.
	Panels []Panel
}

func (dm *DepthMap) Len() int {
	if dm == nil {
		return 0
	}
	return len(dm.Panels)
}

func (dm *DepthMap) Thresholds() []int {
	out := make([]int, len(dm.Panels))
	for i, p := range dm.Panels {
		out[i] = p.Threshold
	}
	return out
}

// SortThresholds orders thresholds ascending, keeping equal values in file
// order. sortback maps an original panel number to its sorted position.
func SortThresholds(thresholds []int) (sorted, sortback []int) {
	order := make([]int, len(thresholds))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return thresholds[order[a]] < thresholds[order[b]]
	})

	sorted = make([]int, len(thresholds))
	sortback = make([]int, len(thresholds))
	for pos, orig := range order {
		sorted[pos] = thresholds[orig]
		sortback[orig] = pos
	}
	return sorted, sortback
}

// Decode builds a depth map for backdrop. The depth map's declared size
// must match the backdrop exactly.
func Decode(r io.Reader, backdrop *image.NRGBA) (*DepthMap, error) {
	if backdrop == nil {
		return nil, errs.Format(op, "no backdrop to split")
	}
	stream := utils.NewStream(r)

	var tag [3]byte
	if _, err := stream.Read(tag[:]); err != nil {
		return nil, errs.Stream(op, err)
	}
	if tag != magic {
		return nil, errs.Format(op, "not a z-buffer file")
	}

	var width, height int
	switch stream.Byte() {
	case 0:
		width, height = legacyWidth, legacyHeight
	case 1:
		width = int(stream.Uint16BE())
		height = int(stream.Uint16BE())
	default:
		if err := stream.Err(); err != nil {
			return nil, errs.Stream(op, err)
		}
		return nil, errs.Format(op, "extended z-buffer format not supported")
	}
	if err := stream.Err(); err != nil {
		return nil, errs.Stream(op, err)
	}

	sceneW, sceneH := backdrop.Bounds().Dx(), backdrop.Bounds().Dy()
	if width != sceneW || height != sceneH {
		return nil, errs.Format(op, "z-buffer %dx%d does not match scene %dx%d", width, height, sceneW, sceneH)
	}

	count := int(stream.Byte())
	if err := stream.Err(); err != nil {
		return nil, errs.Stream(op, err)
	}
	if count == 0 || count > MaxPanels {
		return nil, errs.Format(op, "invalid panel count %d", count)
	}
	thresholds := make([]int, count)
	for i := range thresholds {
		thresholds[i] = int(stream.Uint16BE())
	}
	if err := stream.Err(); err != nil {
		return nil, errs.Stream(op, err)
	}

	sorted, sortback := SortThresholds(thresholds)
	dm := &DepthMap{
		Width:  width,
		Height: height,
		Panels: make([]Panel, count),
	}
	for i := range dm.Panels {
		dm.Panels[i] = Panel{
			Threshold: sorted[i],
			Image:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		}
	}

	if err := dm.split(rle.NewZoneReader(stream), backdrop, sortback); err != nil {
		return nil, errs.Format(op, "zone data at offset %d: %w", stream.Offset(), err)
	}
	return dm, nil
}

// panelFor maps a zone number from the file to a sorted panel index. Zone 0
// and zones naming no panel fall through to the catch-all panel 0.
func panelFor(zone int, sortback []int) int {
	if zone <= 0 || zone >= len(sortback) {
		return 0
	}
	return sortback[zone]
}

func (dm *DepthMap) split(zones *rle.ZoneReader, backdrop *image.NRGBA, sortback []int) error {
	origin := backdrop.Bounds().Min
	for y := 0; y < dm.Height; y++ {
		src := backdrop.PixOffset(origin.X, origin.Y+y)
		for x := 0; x < dm.Width; x++ {
			zone, err := zones.Next()
			if err != nil {
				return err
			}
			panel := dm.Panels[panelFor(zone, sortback)].Image
			dst := panel.PixOffset(x, y)
			copy(panel.Pix[dst:dst+4], backdrop.Pix[src+x*4:src+x*4+4])
		}
	}
	return nil
}
