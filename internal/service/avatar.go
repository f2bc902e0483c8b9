package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"net/http"
	"strings"

	"memeverse/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	AvatarMaxSize        = 256
	AvatarMaxUploadBytes = 5 * 1024 * 1024
	AvatarWebPQuality    = 80
)

// normalizeAvatar decodes raw, fits it into AvatarMaxSize square and re-encodes it as WebP.
func normalizeAvatar(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(raw) > AvatarMaxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", AvatarMaxUploadBytes/(1024*1024)))
	}
	if !strings.HasPrefix(http.DetectContentType(raw), "image/") {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	fitted := resizeToFit(decoded, AvatarMaxSize, AvatarMaxSize)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, fitted, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(math.Round(float64(w)*scale)), 1)
	newH := max(int(math.Round(float64(h)*scale)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
