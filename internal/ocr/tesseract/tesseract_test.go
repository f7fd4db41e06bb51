package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cleared-dev/checkvolume/internal/ocr"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func writeTextImage(t *testing.T, text string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)

	path := filepath.Join(t.TempDir(), "text.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	path := writeTextImage(t, "PAY TO THE ACME")
	e := New()
	res, err := e.Recognize(context.Background(), ocr.NewInput("text.png", path, ocr.WithLanguages("eng")))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.InputID != "text.png" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
	if !strings.Contains(strings.ToUpper(res.PlainText), "ACME") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
}

func TestEngineRecognize_MissingFile(t *testing.T) {
	ensureTesseractAvailable(t)

	_, err := New().Recognize(context.Background(), ocr.NewInput("x", filepath.Join(t.TempDir(), "missing.png")))
	if err == nil {
		t.Fatalf("expected error for missing image")
	}
}

func TestEngineRecognize_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Recognize(ctx, ocr.NewInput("x", "unused.png"))
	if err == nil {
		t.Fatalf("expected context error")
	}
}

func TestEngineName(t *testing.T) {
	if got := New().Name(); got != "tesseract" {
		t.Fatalf("Name() = %q", got)
	}
}
