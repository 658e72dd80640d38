package qoi

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Encode compresses a raw pixel buffer to a complete QOI stream.
//
// pix holds width*height pixels of channels bytes each, row-major. The
// colorspace flag is stored in the header verbatim and never
// interpreted. The returned stream is header + operations + footer.
func Encode(width, height int, pix []byte, channels, colorspace int) ([]byte, error) {
	if width <= 0 {
		return nil, errCodef(ErrorCodeInvalidArgument, "width must be larger than 0, got %d", width)
	}
	if height <= 0 {
		return nil, errCodef(ErrorCodeInvalidArgument, "height must be larger than 0, got %d", height)
	}
	if channels != ChannelsRGB && channels != ChannelsRGBA {
		return nil, errCodef(ErrorCodeInvalidArgument, "channels must be 3 or 4, got %d", channels)
	}
	if colorspace != ColorspaceSRGB && colorspace != ColorspaceLinear {
		return nil, errCodef(ErrorCodeInvalidArgument, "colorspace must be 0 or 1, got %d", colorspace)
	}
	if need := width * height * channels; len(pix) < need {
		return nil, errCodef(ErrorCodeInvalidArgument, "pixel buffer too short: need %d bytes, got %d", need, len(pix))
	}

	var out bytes.Buffer
	out.Grow(headerSize + width*height + footerSize)
	writeHeader(&out, width, height, channels, colorspace)

	var cache pixelCache
	prev := pixel{0, 0, 0, 255}
	run := 0

	reader := newPixelReader(pix, channels)
	for {
		px, ok := reader.next()
		if !ok {
			break
		}

		if px == prev {
			run++
			if run == maxRunLength {
				out.WriteByte(opRun | byte(maxRunLength-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			out.WriteByte(opRun | byte(run-1))
			run = 0
		}

		slot := px.hash()
		switch {
		case cache.lookup(slot) == px:
			out.WriteByte(opIndex | slot)
			// already cached, no store

		case px.a != prev.a:
			// the only op that can carry an alpha change
			out.Write([]byte{opRGBA, px.r, px.g, px.b, px.a})
			cache.store(slot, px)

		default:
			dr, dg, db := px.delta(prev)
			drDg := dr - dg
			dbDg := db - dg
			switch {
			case -2 <= dr && dr <= 1 && -2 <= dg && dg <= 1 && -2 <= db && db <= 1:
				out.WriteByte(opDiff | byte(dr+2)<<4 | byte(dg+2)<<2 | byte(db+2))
			case -32 <= dg && dg <= 31 && -8 <= drDg && drDg <= 7 && -8 <= dbDg && dbDg <= 7:
				out.WriteByte(opLuma | byte(dg+32))
				out.WriteByte(byte(drDg+8)<<4 | byte(dbDg+8))
			default:
				out.Write([]byte{opRGB, px.r, px.g, px.b})
			}
			cache.store(slot, px)
		}

		prev = px
	}

	// the final pixels may have been folded into a still-open run
	if run > 0 {
		out.WriteByte(opRun | byte(run-1))
	}

	out.Write(footer[:])
	return out.Bytes(), nil
}

// EncodeTo is like Encode but writes the stream to w.
func EncodeTo(w io.Writer, width, height int, pix []byte, channels, colorspace int) error {
	data, err := Encode(width, height, pix, channels, colorspace)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeHeader(out *bytes.Buffer, width, height, channels, colorspace int) {
	out.WriteString(magic)
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], uint32(width))
	binary.BigEndian.PutUint32(dims[4:8], uint32(height))
	out.Write(dims[:])
	out.WriteByte(byte(channels))
	out.WriteByte(byte(colorspace))
}
