package qoi

import (
	"bytes"
	"encoding/binary"
)

// Header is the parsed fixed 14-byte stream header.
type Header struct {
	Width      int
	Height     int
	Channels   int
	Colorspace int
}

// Image is the result of decoding a complete QOI stream.
//
// Pix holds Width*Height pixels of Channels bytes each. FooterValid
// reports whether the trailing 8 bytes matched the expected end-of-
// stream marker; a mismatch is deliberately not fatal and the pixel
// data is decoded from the header-declared geometry regardless.
type Image struct {
	Header
	FooterValid bool
	Pix         []byte
}

// DecodeHeader parses and validates the stream header without decoding
// any pixel data.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < headerSize {
		return nil, errCodef(ErrorCodeTruncatedData, "stream shorter than %d-byte header: %d bytes", headerSize, len(data))
	}
	if string(data[0:4]) != magic {
		return nil, errCodef(ErrorCodeBadMagic, "bad magic %q", data[0:4])
	}
	h := &Header{
		Width:      int(binary.BigEndian.Uint32(data[4:8])),
		Height:     int(binary.BigEndian.Uint32(data[8:12])),
		Channels:   int(data[12]),
		Colorspace: int(data[13]),
	}
	if h.Channels != ChannelsRGB && h.Channels != ChannelsRGBA {
		return nil, errCodef(ErrorCodeInvalidArgument, "encoded channel count invalid: %d", h.Channels)
	}
	return h, nil
}

// Decode reconstructs the raw pixel buffer from a complete QOI stream.
func Decode(data []byte) (*Image, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize+footerSize {
		return nil, errCodef(ErrorCodeTruncatedData, "stream has no room for footer: %d bytes", len(data))
	}

	img := &Image{
		Header:      *header,
		FooterValid: bytes.Equal(data[len(data)-footerSize:], footer[:]),
		Pix:         make([]byte, 0, header.Width*header.Height*header.Channels),
	}

	// header and footer excluded, everything between is operations
	body := data[headerSize : len(data)-footerSize]

	var cache pixelCache
	px := pixel{0, 0, 0, 255}

	// every logically produced pixel, including each pixel of an
	// expanded run, refreshes the cache and becomes the new previous
	// pixel, mirroring the encoder exactly
	emit := func(p pixel) {
		img.Pix = append(img.Pix, p.r, p.g, p.b)
		if header.Channels == ChannelsRGBA {
			img.Pix = append(img.Pix, p.a)
		}
		cache.store(p.hash(), p)
	}

	for i := 0; i < len(body); {
		tag := body[i]
		i++
		prev := px

		switch {
		case tag == opRGB:
			if i+3 > len(body) {
				return nil, errCodef(ErrorCodeTruncatedData, "RGB op at byte %d needs 3 trailing bytes", headerSize+i-1)
			}
			px = pixel{body[i], body[i+1], body[i+2], prev.a}
			i += 3

		case tag == opRGBA:
			if i+4 > len(body) {
				return nil, errCodef(ErrorCodeTruncatedData, "RGBA op at byte %d needs 4 trailing bytes", headerSize+i-1)
			}
			px = pixel{body[i], body[i+1], body[i+2], body[i+3]}
			i += 4

		default:
			switch tag & opMask2 {
			case opIndex:
				px = cache.lookup(tag & 0x3f)

			case opDiff:
				px = pixel{
					r: prev.r + ((tag>>4)&0x3 - 2),
					g: prev.g + ((tag>>2)&0x3 - 2),
					b: prev.b + (tag&0x3 - 2),
					a: prev.a,
				}

			case opLuma:
				if i+1 > len(body) {
					return nil, errCodef(ErrorCodeTruncatedData, "LUMA op at byte %d needs 1 trailing byte", headerSize+i-1)
				}
				diffs := body[i]
				i++
				dg := tag&0x3f - 32
				px = pixel{
					r: prev.r + ((diffs>>4)&0xf - 8) + dg,
					g: prev.g + dg,
					b: prev.b + (diffs&0xf - 8) + dg,
					a: prev.a,
				}

			case opRun:
				// biased count: low 6 bits + 1 pixels in total, the
				// last one is produced by the shared emit below
				px = prev
				for n := int(tag & 0x3f); n > 0; n-- {
					emit(px)
				}
			}
		}

		emit(px)
	}

	return img, nil
}
