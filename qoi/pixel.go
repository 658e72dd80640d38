package qoi

// pixel is one RGBA sample. Pixels from 3-channel sources carry a=255
// so the cache hash and all comparisons are uniform across channel
// counts.
type pixel struct {
	r, g, b, a byte
}

// hash returns the cache slot for a pixel. The multiplications wrap in
// byte width; the mod 64 result is unaffected because 64 divides 256.
func (p pixel) hash() byte {
	return (p.r*3 + p.g*5 + p.b*7 + p.a*11) % 64
}

// pixelCache is the 64-slot table of recently seen pixels. The encoder
// and decoder must populate it identically, one store per emitted
// pixel, or index ops desynchronize. Collisions overwrite silently.
type pixelCache [64]pixel

func (c *pixelCache) lookup(slot byte) pixel {
	return c[slot]
}

func (c *pixelCache) store(slot byte, p pixel) {
	c[slot] = p
}

// delta returns the per-channel RGB difference from prev, wrapped into
// signed 8-bit range. Byte subtraction wraps mod 256 and the int8
// conversion reinterprets the result in [-128,127], matching the
// modular arithmetic the wire format is defined over.
func (p pixel) delta(prev pixel) (dr, dg, db int8) {
	dr = int8(p.r - prev.r)
	dg = int8(p.g - prev.g)
	db = int8(p.b - prev.b)
	return
}
