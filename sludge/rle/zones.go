package rle

import (
	"encoding/binary"
	"io"

	"github.com/cam-per/sludge/utils"
)

const longRun = 15

// ZoneReader walks the zone runs of a depth map. Each control byte carries
// the zone in its low nibble and the run length minus one in its high
// nibble; a high nibble of 15 means the length is a big-endian 16-bit value
// plus 16 that follows the control byte.
type ZoneReader struct {
	r    io.Reader
	zone int
	left int
}

func NewZoneReader(r io.Reader) *ZoneReader {
	return &ZoneReader{r: r}
}

// Run reads one control record.
func (reader *ZoneReader) Run() (zone, length int, err error) {
	c, err := utils.ReadByte(reader.r)
	if err != nil {
		return 0, 0, unexpected(err)
	}
	length = int(c >> 4)
	if length == longRun {
		n, err := utils.ReadUint16BE(reader.r)
		if err != nil {
			return 0, 0, unexpected(err)
		}
		length = int(n) + 16
	} else {
		length++
	}
	return int(c & 0x0f), length, nil
}

// Next returns the zone of the next pixel.
func (reader *ZoneReader) Next() (int, error) {
	if reader.left == 0 {
		zone, length, err := reader.Run()
		if err != nil {
			return 0, err
		}
		reader.zone, reader.left = zone, length
	}
	reader.left--
	return reader.zone, nil
}

// EncodeZones run-codes a row-major zone buffer. Zones must fit a nibble.
func EncodeZones(zones []byte) []byte {
	var out []byte
	for i := 0; i < len(zones); {
		z := zones[i] & 0x0f
		j := i + 1
		for j < len(zones) && zones[j]&0x0f == z && j-i < 0xffff+16 {
			j++
		}
		n := j - i
		if n <= longRun {
			out = append(out, byte(n-1)<<4|z)
		} else {
			out = append(out, longRun<<4|z)
			out = binary.BigEndian.AppendUint16(out, uint16(n-16))
		}
		i = j
	}
	return out
}
