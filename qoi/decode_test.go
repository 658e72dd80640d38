package qoi

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// makeStream assembles a header, the given operation bytes and a valid
// footer into a complete stream, bypassing the encoder.
func makeStream(width, height uint32, channels, colorspace byte, body []byte) []byte {
	stream := make([]byte, 0, headerSize+len(body)+footerSize)
	stream = append(stream, magic...)
	stream = binary.BigEndian.AppendUint32(stream, width)
	stream = binary.BigEndian.AppendUint32(stream, height)
	stream = append(stream, channels, colorspace)
	stream = append(stream, body...)
	stream = append(stream, footer[:]...)
	return stream
}

func TestDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name                string
		width, height       int
		channels, colorspace int
		pix                 []byte
	}{
		{"reference 4ch", 4, 3, ChannelsRGBA, ColorspaceSRGB, referencePixels4()},
		{"reference 3ch", 3, 3, ChannelsRGB, ColorspaceSRGB, referencePixels3()},
		{"gradient rgba", 64, 48, ChannelsRGBA, ColorspaceSRGB, syntheticImage(64, 48, ChannelsRGBA)},
		{"gradient rgb", 64, 48, ChannelsRGB, ColorspaceLinear, syntheticImage(64, 48, ChannelsRGB)},
		{"single pixel", 1, 1, ChannelsRGBA, ColorspaceSRGB, []byte{9, 8, 7, 6}},
		{"uniform run", 13, 10, ChannelsRGB, ColorspaceSRGB, bytes.Repeat([]byte{0, 0, 0}, 130)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stream, err := Encode(tc.width, tc.height, tc.pix, tc.channels, tc.colorspace)
			if err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}

			img, err := Decode(stream)
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}

			if img.Width != tc.width || img.Height != tc.height {
				t.Errorf("geometry mismatch: got %dx%d, want %dx%d",
					img.Width, img.Height, tc.width, tc.height)
			}
			if img.Channels != tc.channels {
				t.Errorf("channels mismatch: got %d, want %d", img.Channels, tc.channels)
			}
			if img.Colorspace != tc.colorspace {
				t.Errorf("colorspace mismatch: got %d, want %d", img.Colorspace, tc.colorspace)
			}
			if !img.FooterValid {
				t.Errorf("footer reported invalid on a well-formed stream")
			}

			if len(img.Pix) != len(tc.pix) {
				t.Fatalf("length mismatch: decoded %d bytes, original %d bytes",
					len(img.Pix), len(tc.pix))
			}
			if !bytes.Equal(img.Pix, tc.pix) {
				for i := range img.Pix {
					if img.Pix[i] != tc.pix[i] {
						t.Fatalf("content mismatch at byte %d: decoded 0x%02x, original 0x%02x",
							i, img.Pix[i], tc.pix[i])
					}
				}
			}
		})
	}
}

func TestDecodeStripsAlphaForThreeChannels(t *testing.T) {
	// a 3-channel stream may still contain 4-byte pixels internally;
	// the output carries 3 bytes per pixel
	body := []byte{opRGB, 1, 2, 3, opRGB, 4, 5, 6}
	img, err := Decode(makeStream(2, 1, 3, 0, body))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels mismatch: got %v, want %v", img.Pix, want)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	stream, err := Encode(1, 1, []byte{1, 2, 3, 4}, ChannelsRGBA, ColorspaceSRGB)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	stream[0] = 'Q'

	_, err = Decode(stream)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	cerr, ok := AsCodecError(err)
	if !ok || cerr.Code != ErrorCodeBadMagic {
		t.Errorf("expected %s, got %v", ErrorCodeBadMagic, err)
	}
}

func TestDecodeCorruptFooterIsNotFatal(t *testing.T) {
	pix := referencePixels4()
	stream, err := Encode(4, 3, pix, ChannelsRGBA, ColorspaceSRGB)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	stream[len(stream)-1] = 0xab

	img, err := Decode(stream)
	if err != nil {
		t.Fatalf("decode failed on corrupt footer: %v", err)
	}
	if img.FooterValid {
		t.Errorf("FooterValid = true for corrupted footer")
	}
	if !bytes.Equal(img.Pix, pix) {
		t.Errorf("pixel data corrupted by footer mismatch")
	}
}

func TestDecodeTruncatedOps(t *testing.T) {
	testCases := []struct {
		name string
		body []byte
	}{
		{"rgb missing payload", []byte{opRGB, 1, 2}},
		{"rgba missing payload", []byte{opRGBA, 1, 2, 3}},
		{"luma missing second byte", []byte{opLuma | 32}},
		{"rgb after valid op", []byte{opDiff | 0x2a, opRGB}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(makeStream(2, 1, 4, 0, tc.body))
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			cerr, ok := AsCodecError(err)
			if !ok {
				t.Fatalf("expected CodecError, got %T: %v", err, err)
			}
			if cerr.Code != ErrorCodeTruncatedData {
				t.Errorf("error code: got %s, want %s", cerr.Code, ErrorCodeTruncatedData)
			}
		})
	}
}

func TestDecodeShortStreams(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		code ErrorCode
	}{
		{"empty", nil, ErrorCodeTruncatedData},
		{"magic only", []byte(magic), ErrorCodeTruncatedData},
		{"footer cut off", makeStream(1, 1, 4, 0, nil)[:headerSize+4], ErrorCodeTruncatedData},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			cerr, ok := AsCodecError(err)
			if !ok {
				t.Fatalf("expected CodecError, got %T: %v", err, err)
			}
			if cerr.Code != tc.code {
				t.Errorf("error code: got %s, want %s", cerr.Code, tc.code)
			}
		})
	}
}

func TestDecodeInvalidChannelCount(t *testing.T) {
	_, err := Decode(makeStream(1, 1, 5, 0, []byte{opRGB, 1, 2, 3}))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	cerr, ok := AsCodecError(err)
	if !ok || cerr.Code != ErrorCodeInvalidArgument {
		t.Errorf("expected %s, got %v", ErrorCodeInvalidArgument, err)
	}
}

func TestDecodeHeader(t *testing.T) {
	stream, err := Encode(64, 48, syntheticImage(64, 48, ChannelsRGB), ChannelsRGB, ColorspaceLinear)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	h, err := DecodeHeader(stream)
	if err != nil {
		t.Fatalf("Failed to decode header: %v", err)
	}
	if h.Width != 64 || h.Height != 48 {
		t.Errorf("geometry mismatch: got %dx%d, want 64x48", h.Width, h.Height)
	}
	if h.Channels != ChannelsRGB || h.Colorspace != ColorspaceLinear {
		t.Errorf("header fields mismatch: %+v", h)
	}
}

func TestDecodeRunExpansionUpdatesState(t *testing.T) {
	// a run's pixels must feed the cache and previous-pixel state the
	// same way individually emitted pixels do; an INDEX op directly
	// after a run resolves against the run pixel's slot
	runPx := pixel{200, 100, 50, 255}
	body := []byte{
		opRGB, runPx.r, runPx.g, runPx.b,
		opRun | 2, // three more copies
		opRGB, 1, 2, 3,
		opIndex | runPx.hash(),
	}
	img, err := Decode(makeStream(6, 1, 4, 0, body))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	want := flatten([][]byte{
		{200, 100, 50, 255},
		{200, 100, 50, 255},
		{200, 100, 50, 255},
		{200, 100, 50, 255},
		{1, 2, 3, 255},
		{200, 100, 50, 255},
	})
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels mismatch:\n got %v\nwant %v", img.Pix, want)
	}
}

func BenchmarkDecodeRGBA(b *testing.B) {
	stream, err := Encode(256, 256, syntheticImage(256, 256, ChannelsRGBA), ChannelsRGBA, ColorspaceSRGB)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(256 * 256 * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(stream); err != nil {
			b.Fatal(err)
		}
	}
}
