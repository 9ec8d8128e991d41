// Package imaging turns uploaded pictures into fixed-size PNG avatars.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"regexp"

	"golang.org/x/image/draw"
)

const (
	MaxUploadBytes = 1_000_000
	AvatarSize     = 250

	// MaxPixels bounds the decoded bitmap; a small compressed file can
	// still describe a huge canvas.
	MaxPixels = 25_000_000
)

var (
	ErrUnsupportedType = errors.New("Please upload an image")
	ErrTooLarge        = errors.New("File too large")
)

var allowedName = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

// ValidateUpload checks the client-supplied filename and size before the
// payload is decoded.
func ValidateUpload(filename string, size int64) error {
	if !allowedName.MatchString(filename) {
		return ErrUnsupportedType
	}
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}

// Thumbnail decodes a JPEG or PNG and returns an AvatarSize x AvatarSize
// PNG. The picture is scaled so its shorter side fills the square and the
// overflow is cropped evenly from both ends, keeping the aspect ratio.
// Pictures above MaxPixels are rejected with ErrTooLarge before any pixel
// data is decoded.
func Thumbnail(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupportedType
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// centerSquare is the largest square centered in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
