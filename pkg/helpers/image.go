package helpers

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrNotImage is returned when a payload is not a decodable image.
var ErrNotImage = errors.New("upload a valid image. the file you uploaded was either not an image or a corrupted image")

// ImageInfo describes a validated image payload.
type ImageInfo struct {
	ContentType string
	Ext         string
	Width       int
	Height      int
}

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// maxImagePixels bounds the size of a bitmap DetectImage is willing to decode.
const maxImagePixels = 50_000_000

// DetectImage sniffs data and decodes it fully, so truncated or corrupted
// bodies are rejected along with non-images.
func DetectImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, ErrNotImage
	}
	mt := mimetype.Detect(data)
	ext, ok := imageExts[mt.String()]
	if !ok {
		return ImageInfo{}, ErrNotImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return ImageInfo{}, ErrNotImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, ErrNotImage
	}
	b := img.Bounds()
	return ImageInfo{ContentType: mt.String(), Ext: ext, Width: b.Dx(), Height: b.Dy()}, nil
}
