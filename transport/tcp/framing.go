package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerSize          = 4
	readChunkSize       = 4096
	DefaultMaxFrameSize = 1 << 20
)

var (
	ErrEmptyFrame    = errors.New("frame length is zero")
	ErrFrameTooLarge = errors.New("frame exceeds the maximum size")
)

// Encode - prepends the big-endian length of payload.
func Encode(payload []byte, maxSize int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyFrame
	}

	if len(payload) > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	frame := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerSize:], payload)

	return frame, nil
}

// Decoder splits a byte stream into frames. Bytes of an incomplete frame stay
// buffered until the rest arrives; one Feed may complete several frames.
type Decoder struct {
	maxSize int
	buf     []byte
	start   int
}

func NewDecoder(maxSize int) *Decoder {
	return &Decoder{maxSize: maxSize}
}

// Feed - appends bytes read from the stream.
func (that *Decoder) Feed(data []byte) {
	if that.start > 0 && that.start == len(that.buf) {
		that.buf = that.buf[:0]
		that.start = 0
	}

	that.buf = append(that.buf, data...)
}

// Next - the next complete frame payload. ok is false when more bytes are needed.
// An error means the stream is corrupt and must be dropped.
func (that *Decoder) Next() ([]byte, bool, error) {
	pending := that.buf[that.start:]
	if len(pending) < headerSize {
		return nil, false, nil
	}

	length := binary.BigEndian.Uint32(pending)
	if length == 0 {
		return nil, false, ErrEmptyFrame
	}

	if uint64(length) > uint64(that.maxSize) {
		return nil, false, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	end := headerSize + int(length)
	if len(pending) < end {
		return nil, false, nil
	}

	payload := make([]byte, length)
	copy(payload, pending[headerSize:end])
	that.start += end

	that.compact()

	return payload, true, nil
}

// Buffered - bytes received but not yet returned as a frame.
func (that *Decoder) Buffered() int {
	return len(that.buf) - that.start
}

// compact drops consumed bytes once they make up most of the buffer.
func (that *Decoder) compact() {
	if that.start < len(that.buf)/2 {
		return
	}

	n := copy(that.buf, that.buf[that.start:])
	that.buf = that.buf[:n]
	that.start = 0
}

// FrameReader reads whole frames from a stream.
type FrameReader struct {
	reader  io.Reader
	decoder *Decoder
	chunk   []byte
}

func NewFrameReader(reader io.Reader, maxSize int) *FrameReader {
	return &FrameReader{
		reader:  reader,
		decoder: NewDecoder(maxSize),
		chunk:   make([]byte, readChunkSize),
	}
}

// ReadFrame - blocks until a full frame is available.
func (that *FrameReader) ReadFrame() ([]byte, error) {
	for {
		payload, ok, err := that.decoder.Next()
		if err != nil {
			return nil, err
		}

		if ok {
			return payload, nil
		}

		n, err := that.reader.Read(that.chunk)
		if n > 0 {
			that.decoder.Feed(that.chunk[:n])
			continue
		}

		if err != nil {
			if errors.Is(err, io.EOF) && that.decoder.Buffered() > 0 {
				return nil, io.ErrUnexpectedEOF
			}

			return nil, err
		}
	}
}
