// qoibench round-trips a directory of images through the QOI codec and
// reports compression ratios against raw pixels and zstd as a baseline.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pixelstream/qoi_go/qoi"
)

type benchResult struct {
	roundtripOK bool
	errMsg      string
	rawSize     int
	qoiSize     int
	zstdSize    int
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

func main() {
	dirPath := flag.String("dir", ".", "Directory containing images to test")
	limit := flag.Int("limit", 0, "Limit number of files to test (0 = no limit)")
	workers := flag.Int("workers", 8, "Number of parallel workers")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	entries, err := os.ReadDir(*dirPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading directory: %v\n", err)
		os.Exit(1)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	if *limit > 0 && len(files) > *limit {
		files = files[:*limit]
	}

	fmt.Printf("Testing %d files with %d workers...\n", len(files), *workers)

	zstdEnc, err := zstd.NewWriter(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating zstd encoder: %v\n", err)
		os.Exit(1)
	}
	defer zstdEnc.Close()

	var pass, fail, skipped int64
	var totalRaw, totalQOI, totalZstd int64
	var mu sync.Mutex
	var failedFiles []string

	jobs := make(chan string, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for filename := range jobs {
				result := benchFile(filepath.Join(*dirPath, filename), zstdEnc)

				if result.errMsg == "skip" {
					atomic.AddInt64(&skipped, 1)
					continue
				}

				if result.roundtripOK {
					atomic.AddInt64(&pass, 1)
					atomic.AddInt64(&totalRaw, int64(result.rawSize))
					atomic.AddInt64(&totalQOI, int64(result.qoiSize))
					atomic.AddInt64(&totalZstd, int64(result.zstdSize))
					if *verbose {
						fmt.Printf("OK   %s raw=%d qoi=%d zstd=%d\n",
							filename, result.rawSize, result.qoiSize, result.zstdSize)
					}
				} else {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					failedFiles = append(failedFiles, fmt.Sprintf("%s: %s", filename, result.errMsg))
					mu.Unlock()
				}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	fmt.Println()
	total := pass + fail
	if total == 0 {
		fmt.Println("No images found.")
		return
	}
	fmt.Printf("Roundtrip: %d/%d passed (%.1f%%), %d skipped\n",
		pass, total, 100*float64(pass)/float64(total), skipped)
	if totalRaw > 0 {
		fmt.Printf("Sizes: raw=%d qoi=%d (%.4f) zstd=%d (%.4f)\n",
			totalRaw,
			totalQOI, float64(totalQOI)/float64(totalRaw),
			totalZstd, float64(totalZstd)/float64(totalRaw))
	}
	if len(failedFiles) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failedFiles {
			fmt.Printf("  %s\n", f)
		}
		os.Exit(1)
	}
}

// benchFile encodes one image to QOI, decodes it back and verifies the
// pixels match byte for byte.
func benchFile(path string, zstdEnc *zstd.Encoder) benchResult {
	f, err := os.Open(path)
	if err != nil {
		return benchResult{errMsg: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		// not a decodable image, ignore it
		return benchResult{errMsg: "skip"}
	}

	bounds := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	raw := nrgba.Pix
	stream, err := qoi.Encode(bounds.Dx(), bounds.Dy(), raw, qoi.ChannelsRGBA, qoi.ColorspaceSRGB)
	if err != nil {
		return benchResult{errMsg: fmt.Sprintf("encode: %v", err)}
	}

	img, err := qoi.Decode(stream)
	if err != nil {
		return benchResult{errMsg: fmt.Sprintf("decode: %v", err)}
	}
	if !img.FooterValid {
		return benchResult{errMsg: "decoded footer reported invalid"}
	}
	if !bytes.Equal(img.Pix, raw) {
		for i := range img.Pix {
			if i < len(raw) && img.Pix[i] != raw[i] {
				return benchResult{errMsg: fmt.Sprintf(
					"content mismatch at byte %d: decoded 0x%02x, original 0x%02x",
					i, img.Pix[i], raw[i])}
			}
		}
		return benchResult{errMsg: fmt.Sprintf(
			"length mismatch: decoded %d bytes, original %d bytes", len(img.Pix), len(raw))}
	}

	return benchResult{
		roundtripOK: true,
		rawSize:     len(raw),
		qoiSize:     len(stream),
		zstdSize:    len(zstdEnc.EncodeAll(raw, nil)),
	}
}
