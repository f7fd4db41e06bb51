// Package imaging prepares check images for OCR.
package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultWidth is the width, in pixels, every image is scaled to.
const DefaultWidth = 2000

// Preprocessor derives an OCR-ready image from a source image file and
// returns the derived file's path.
type Preprocessor interface {
	Preprocess(ctx context.Context, src string) (string, error)
}

// GrayResizer converts images to 8-bit grayscale and scales them to a fixed
// width, keeping the aspect ratio. Output is PNG.
type GrayResizer struct {
	Width   int
	WorkDir string
}

var _ Preprocessor = (*GrayResizer)(nil)

// NewGrayResizer returns a GrayResizer writing into workDir. A width of zero
// selects DefaultWidth.
func NewGrayResizer(width int, workDir string) *GrayResizer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &GrayResizer{Width: width, WorkDir: workDir}
}

// DerivedPath returns where the processed version of src is written.
// "checks/check1.jpg" -> "<workdir>/processed_check1.png"
func (g *GrayResizer) DerivedPath(src string) string {
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(g.WorkDir, "processed_"+name+".png")
}

// Preprocess decodes src, converts and scales it, and writes the result.
func (g *GrayResizer) Preprocess(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := decodeFile(src)
	if err != nil {
		return "", err
	}

	out := Grayscale(img)
	if g.Width > 0 && out.Bounds().Dx() != g.Width {
		out = ScaleToWidth(out, g.Width)
	}

	if err := os.MkdirAll(g.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("creating work dir: %w", err)
	}

	dst := g.DerivedPath(src)
	if err := encodeFile(dst, out); err != nil {
		return "", err
	}
	return dst, nil
}

// Grayscale returns an 8-bit grayscale copy of img.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// ScaleToWidth resamples img to width pixels wide with CatmullRom,
// preserving the aspect ratio.
func ScaleToWidth(img *image.Gray, width int) *image.Gray {
	b := img.Bounds()
	height := 1
	if b.Dx() > 0 {
		height = max(1, b.Dy()*width/b.Dx())
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func encodeFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
