// Package ocr defines the contract for plugging an OCR engine into the check
// pipeline. Engines receive the path of a preprocessed image and return the
// recognized plain text.
package ocr

import (
	"context"
	"strconv"
)

// Input describes one image submitted for recognition.
type Input struct {
	// ID is echoed back in the Result.
	ID string
	// Path is the image file on disk.
	Path string
	// Languages are trained-data names such as "eng".
	Languages []string
	// Metadata passes engine-specific variables through unchanged.
	Metadata map[string]string
}

// Result is the recognized text for one input.
type Result struct {
	InputID   string
	PlainText string
	// Confidence is the mean word confidence in [0,1]; zero if unknown.
	Confidence float64
}

// Engine turns an image into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// InputOption mutates an Input.
type InputOption func(*Input)

// NewInput builds an Input for the image at path.
func NewInput(id, path string, opts ...InputOption) Input {
	in := Input{ID: id, Path: path}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithMetadata copies engine-specific variables onto the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the Tesseract page segmentation mode.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}
