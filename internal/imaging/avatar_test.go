package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"jpg", "me.jpg", 10, nil},
		{"jpeg", "me.jpeg", 10, nil},
		{"png at cap", "me.png", MaxUploadBytes, nil},
		{"pdf", "cv.pdf", 10, ErrUnsupportedType},
		{"no extension", "avatar", 10, ErrUnsupportedType},
		{"uppercase extension", "me.PNG", 10, ErrUnsupportedType},
		{"extension not at end", "me.png.exe", 10, ErrUnsupportedType},
		{"too large", "me.png", MaxUploadBytes + 1, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func sample(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func TestThumbnail_FromJPEGAndPNG(t *testing.T) {
	var jpg, pn bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, sample(640, 480), nil))
	require.NoError(t, png.Encode(&pn, sample(32, 64)))

	for name, in := range map[string]*bytes.Buffer{"jpeg": &jpg, "png": &pn} {
		t.Run(name, func(t *testing.T) {
			out, err := Thumbnail(in)
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, AvatarSize, img.Bounds().Dx())
			assert.Equal(t, AvatarSize, img.Bounds().Dy())
		})
	}
}

func TestThumbnail_RejectsNonImage(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("definitely not an image"))
	assert.Error(t, err)
}

func thirds(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bands := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, bands[x*3/w])
		}
	}
	return img
}

func TestThumbnail_CropsToCenterKeepingAspect(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, thirds(600, 200)))

	out, err := Thumbnail(&in)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, AvatarSize, AvatarSize), img.Bounds())

	// only the middle band survives the crop
	for _, pt := range []image.Point{{10, 125}, {125, 125}, {240, 125}, {125, 5}} {
		r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
		assert.Greater(t, g>>8, uint32(240), "green at %v", pt)
		assert.Less(t, r>>8, uint32(15), "red at %v", pt)
		assert.Less(t, b>>8, uint32(15), "blue at %v", pt)
	}
}

func TestCenterSquare(t *testing.T) {
	assert.Equal(t, image.Rect(200, 0, 400, 200), centerSquare(image.Rect(0, 0, 600, 200)))
	assert.Equal(t, image.Rect(0, 50, 100, 150), centerSquare(image.Rect(0, 0, 100, 200)))
	assert.Equal(t, image.Rect(0, 0, 30, 30), centerSquare(image.Rect(0, 0, 30, 30)))
}

func TestThumbnail_RejectsHugeCanvas(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, image.NewGray(image.Rect(0, 0, 6000, 6000))))
	require.LessOrEqual(t, in.Len(), MaxUploadBytes)
	require.NoError(t, ValidateUpload("big.png", int64(in.Len())))

	_, err := Thumbnail(&in)
	assert.ErrorIs(t, err, ErrTooLarge)
}
