// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes product images before they are uploaded to
// the marketplace API.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types produced by Normalize.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
)

// Processing defaults
const (
	DefaultMaxDimension = 1600
	DefaultMaxPixels    = 40_000_000 // decoded size bound, about 160 MB as NRGBA
	DefaultMaxBytes     = 10 << 20
	jpegQuality         = 90
)

var (
	// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the upload exceeds the byte limit.
	ErrTooLarge = errors.New("image file too large")
	// ErrDimensions is returned when the decoded image would exceed the
	// pixel limit. It matches ErrTooLarge.
	ErrDimensions = fmt.Errorf("%w: dimensions exceed pixel limit", ErrTooLarge)
)

// Result is a normalized image ready for upload.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Processor validates and normalizes uploaded images.
type Processor struct {
	maxDimension int
	maxPixels    int64
	maxBytes     int64
}

// NewProcessor creates a processor. Non-positive limits select the defaults.
func NewProcessor(maxDimension int, maxPixels int64, maxBytes int64) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Processor{maxDimension: maxDimension, maxPixels: maxPixels, maxBytes: maxBytes}
}

// Normalize reads an uploaded image, applies its EXIF orientation, scales it
// down to fit the maximum dimension and re-encodes it without metadata.
// WebP input is re-encoded as JPEG since there is no pure Go WebP encoder.
func (p *Processor) Normalize(r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	// Compressed size says nothing about the decoded buffer; check the
	// header before allocating it.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, ErrDimensions
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	if format == "webp" {
		format = "jpeg"
	}
	processed, err := encodeImage(img, format, jpegQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b = img.Bounds()
	return &Result{
		Filename:    outputFilename(filename, format),
		ContentType: formatToMimeType(format),
		Data:        processed,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	default:
		return MimeTypeJPEG
	}
}

// outputFilename strips directories from name and sets the extension that
// matches format.
func outputFilename(name, format string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == ".." || stem == "/" {
		stem = "image"
	}
	switch format {
	case "png":
		return stem + ".png"
	case "gif":
		return stem + ".gif"
	default:
		return stem + ".jpg"
	}
}
