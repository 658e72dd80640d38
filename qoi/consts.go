// Package qoi implements the Quite OK Image format, a byte-aligned
// lossless codec for 24 and 32 bit pixel data.
package qoi

// Channel counts accepted by the encoder and stored in the header.
const (
	ChannelsRGB  = 3
	ChannelsRGBA = 4
)

// Colorspace flags. The value is carried in the header but never
// interpreted by the codec.
const (
	ColorspaceSRGB   = 0 // sRGB with linear alpha
	ColorspaceLinear = 1 // all channels linear
)

// Operation tags. opRGB and opRGBA occupy the top two values of the
// run tag range, so they must be matched exactly before the 2-bit mask
// is applied.
const (
	opRGB   = 0xfe
	opRGBA  = 0xff
	opIndex = 0x00
	opDiff  = 0x40
	opLuma  = 0x80
	opRun   = 0xc0

	opMask2 = 0xc0
)

const (
	headerSize = 14
	footerSize = 8

	// A single run op encodes at most 62 pixels; the two top biased
	// counts are taken by opRGB and opRGBA.
	maxRunLength = 62
)

const magic = "qoif"

var footer = [footerSize]byte{0, 0, 0, 0, 0, 0, 0, 1}
