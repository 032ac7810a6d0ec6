package utils

import (
	"bufio"
	"encoding/binary"
	"io"
)

func ReadByte(reader io.Reader) (byte, error) {
	if br, ok := reader.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var buf [1]byte
	_, err := io.ReadFull(reader, buf[:])
	return buf[0], err
}

func ReadUint16BE(reader io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func ReadUint32LE(reader io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Stream is the byte source shared by the resource codecs. The first read
// failure sticks: later reads return zero values and Err reports it, so a
// decoder can read a whole header and check once.
type Stream struct {
	r   *bufio.Reader
	err error
	off int64
}

func NewStream(r io.Reader) *Stream {
	if br, ok := r.(*bufio.Reader); ok {
		return &Stream{r: br}
	}
	return &Stream{r: bufio.NewReader(r)}
}

func (stream *Stream) Err() error    { return stream.err }
func (stream *Stream) Offset() int64 { return stream.off }

// Reader exposes the buffered source for delegating decoders (e.g. PNG).
// Bytes consumed through it are not counted by Offset.
func (stream *Stream) Reader() io.Reader { return stream.r }

func (stream *Stream) fail(err error) {
	if stream.err == nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		stream.err = err
	}
}

func (stream *Stream) ReadByte() (byte, error) {
	if stream.err != nil {
		return 0, stream.err
	}
	b, err := stream.r.ReadByte()
	if err != nil {
		stream.fail(err)
		return 0, stream.err
	}
	stream.off++
	return b, nil
}

func (stream *Stream) Read(p []byte) (int, error) {
	if stream.err != nil {
		return 0, stream.err
	}
	n, err := io.ReadFull(stream.r, p)
	stream.off += int64(n)
	if err != nil {
		stream.fail(err)
		return n, stream.err
	}
	return n, nil
}

func (stream *Stream) Byte() byte {
	b, _ := stream.ReadByte()
	return b
}

func (stream *Stream) Uint16BE() uint16 {
	var buf [2]byte
	if _, err := stream.Read(buf[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(buf[:])
}

func (stream *Stream) Int16LE() int16 {
	var buf [2]byte
	if _, err := stream.Read(buf[:]); err != nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(buf[:]))
}

func (stream *Stream) Uint32LE() uint32 {
	var buf [4]byte
	if _, err := stream.Read(buf[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}
