package qoi

// pixelReader walks a raw buffer as a sequence of pixels, advancing by
// the channel count of the source. For 3-channel input every produced
// pixel is fully opaque.
type pixelReader struct {
	pix    []byte
	stride int
	off    int
}

func newPixelReader(pix []byte, channels int) *pixelReader {
	return &pixelReader{pix: pix, stride: channels}
}

// next returns the next pixel, or false once fewer than stride bytes
// remain. A trailing partial pixel is never produced.
func (r *pixelReader) next() (pixel, bool) {
	if r.off+r.stride > len(r.pix) {
		return pixel{}, false
	}
	p := pixel{
		r: r.pix[r.off],
		g: r.pix[r.off+1],
		b: r.pix[r.off+2],
		a: 255,
	}
	if r.stride == ChannelsRGBA {
		p.a = r.pix[r.off+3]
	}
	r.off += r.stride
	return p, true
}
