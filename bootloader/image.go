package bootloader

import (
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

// Segment is one contiguous run of firmware bytes at an absolute address.
type Segment struct {
	Address uint32
	Data    []byte
}

// Chunk is one CAN-payload-sized slice of a firmware image, addressed by
// its absolute target address. Streamed as one-shot packets during an
// over-the-wire update.
type Chunk struct {
	Address uint32
	Len     uint8
	Data    [8]byte
}

// Image is a parsed firmware image.
type Image struct {
	segments []Segment
}

// LoadHex parses an Intel HEX firmware image.
func LoadHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("bootloader: parse hex: %w", err)
	}
	img := &Image{}
	for _, seg := range mem.GetDataSegments() {
		img.segments = append(img.segments, Segment{
			Address: seg.Address,
			Data:    append([]byte(nil), seg.Data...),
		})
	}
	return img, nil
}

// Segments returns the contiguous data runs of the image.
func (img *Image) Segments() []Segment { return img.segments }

// Size is the total payload byte count.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.segments {
		n += len(s.Data)
	}
	return n
}

// Chunks splits the image into 8-byte transfer records in address order.
func (img *Image) Chunks() []Chunk {
	var out []Chunk
	for _, s := range img.segments {
		for off := 0; off < len(s.Data); off += 8 {
			end := off + 8
			if end > len(s.Data) {
				end = len(s.Data)
			}
			c := Chunk{
				Address: s.Address + uint32(off),
				Len:     uint8(end - off),
			}
			copy(c.Data[:], s.Data[off:end])
			out = append(out, c)
		}
	}
	return out
}
