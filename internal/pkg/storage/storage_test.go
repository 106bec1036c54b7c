package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "upload/ab/file.txt", strings.NewReader("hello")))

	rc, err := s.Get(ctx, "upload/ab/file.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))
	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))

	_, err = s.Get(ctx, "upload/ab/file.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsEscape(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageProcessor(t *testing.T) {
	p := NewImageProcessor()
	src := testPNG(t, 400, 200)

	fitted, err := p.FitJPEG(bytes.NewReader(src), 100, 100)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(fitted)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	thumb, err := p.GenerateThumbnail(bytes.NewReader(src), 64, 64)
	require.NoError(t, err)
	cfg, _, err = image.DecodeConfig(thumb)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 64, cfg.Height)

	_, err = p.FitJPEG(strings.NewReader("not an image"), 10, 10)
	assert.Error(t, err)
}
