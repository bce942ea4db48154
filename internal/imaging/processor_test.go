// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeScalesDown(t *testing.T) {
	p := NewProcessor(100, 0, 0)
	data := encodePNG(t, createTestImage(400, 200))

	res, err := p.Normalize(bytes.NewReader(data), "wide.png")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Width != 100 || res.Height != 50 {
		t.Errorf("dimensions = %dx%d, want 100x50", res.Width, res.Height)
	}
	if res.ContentType != MimeTypePNG {
		t.Errorf("ContentType = %q, want %q", res.ContentType, MimeTypePNG)
	}
	if res.Filename != "wide.png" {
		t.Errorf("Filename = %q, want %q", res.Filename, "wide.png")
	}
	if detectFormat(res.Data) != "png" {
		t.Error("expected PNG output data")
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	p := NewProcessor(100, 0, 0)
	data := encodePNG(t, createTestImage(40, 30))

	res, err := p.Normalize(bytes.NewReader(data), "small.png")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Width != 40 || res.Height != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", res.Width, res.Height)
	}
}

func TestNormalizeRejectsUnsupported(t *testing.T) {
	p := NewProcessor(0, 0, 0)

	_, err := p.Normalize(bytes.NewReader([]byte("plain text, not an image")), "notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Normalize() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNormalizeRejectsTIFF(t *testing.T) {
	p := NewProcessor(0, 0, 0)
	tiff := []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}

	_, err := p.Normalize(bytes.NewReader(tiff), "scan.tiff")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Normalize() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNormalizeTooLarge(t *testing.T) {
	p := NewProcessor(0, 0, 64)
	data := encodePNG(t, createTestImage(50, 50))

	_, err := p.Normalize(bytes.NewReader(data), "big.png")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Normalize() error = %v, want ErrTooLarge", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk announcing an 8-bit
// grayscale image of the given size, without any pixel data.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, width)
	ihdr = binary.BigEndian.AppendUint32(ihdr, height)
	ihdr = append(ihdr, 8, 0, 0, 0, 0) // bit depth, gray, deflate, no filter, no interlace

	data := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	data = binary.BigEndian.AppendUint32(data, 13)
	data = append(data, ihdr...)
	return binary.BigEndian.AppendUint32(data, crc32.ChecksumIEEE(ihdr))
}

func TestNormalizeRejectsHugeDimensions(t *testing.T) {
	tests := []struct {
		name      string
		maxPixels int64
		data      []byte
	}{
		{"announced 65000x65000", 0, pngHeader(65000, 65000)},
		{"announced 12000x12000", 0, pngHeader(12000, 12000)},
		{"real image over custom limit", 100, encodePNG(t, createTestImage(20, 20))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(0, tt.maxPixels, 0)
			_, err := p.Normalize(bytes.NewReader(tt.data), "bomb.png")
			if !errors.Is(err, ErrDimensions) {
				t.Errorf("Normalize() error = %v, want ErrDimensions", err)
			}
			if !errors.Is(err, ErrTooLarge) {
				t.Errorf("Normalize() error = %v, want it to match ErrTooLarge", err)
			}
		})
	}
}

func TestNormalizeWithinPixelLimit(t *testing.T) {
	p := NewProcessor(0, 400, 0)
	data := encodePNG(t, createTestImage(20, 20))

	if _, err := p.Normalize(bytes.NewReader(data), "exact.png"); err != nil {
		t.Errorf("Normalize() error = %v, want nil", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"photo.webp", "jpeg", "photo.jpg"},
		{"photo.JPEG", "jpeg", "photo.jpg"},
		{"../../etc/passwd.png", "png", "passwd.png"},
		{`C:\Users\me\chair.gif`, "gif", "chair.gif"},
		{"", "jpeg", "image.jpg"},
		{".png", "png", "image.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputFilename(tt.name, tt.format); got != tt.want {
				t.Errorf("outputFilename(%q, %q) = %q, want %q", tt.name, tt.format, got, tt.want)
			}
		})
	}
}

func TestFormatToMimeType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", MimeTypeJPEG},
		{"png", MimeTypePNG},
		{"gif", MimeTypeGIF},
		{"unknown", MimeTypeJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := formatToMimeType(tt.format); got != tt.want {
				t.Errorf("formatToMimeType(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	for orientation := 0; orientation <= 9; orientation++ {
		t.Run("orientation_"+strconv.Itoa(orientation), func(t *testing.T) {
			img := createTestImage(20, 10)
			result := applyOrientation(img, orientation)
			if result == nil {
				t.Fatal("applyOrientation returned nil")
			}
			b := result.Bounds()
			rotated := orientation >= 5 && orientation <= 8
			if rotated && (b.Dx() != 10 || b.Dy() != 20) {
				t.Errorf("orientation %d: got %dx%d, want 10x20", orientation, b.Dx(), b.Dy())
			}
			if !rotated && (b.Dx() != 20 || b.Dy() != 10) {
				t.Errorf("orientation %d: got %dx%d, want 20x10", orientation, b.Dx(), b.Dy())
			}
		})
	}
}
