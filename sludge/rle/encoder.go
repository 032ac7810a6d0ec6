package rle

import "fmt"

// Encode produces a stream Decoder reads back as indices. Repeated indices
// become runs when the index can be expressed as a run code; everything else
// is written literally.
func Encode(indices []byte, colours byte) ([]byte, error) {
	out := make([]byte, 0, len(indices))
	for i := 0; i < len(indices); {
		v := indices[i]
		j := i + 1
		for j < len(indices) && indices[j] == v && j-i < 256 {
			j++
		}
		count := j - i
		runnable := int(v)+int(colours)+1 <= 0xff

		switch {
		case count > 1 && runnable:
			out = append(out, v+colours+1, byte(count-1))
		case v > colours:
			if !runnable {
				return nil, fmt.Errorf("%w: index %d with %d colours", ErrIndexOverlap, v, colours)
			}
			out = append(out, v+colours+1, 0)
			count = 1
		default:
			out = append(out, v)
			count = 1
		}
		i += count
	}
	return out, nil
}
