package article

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/debemdeboas/composer/internal/util"
	"golang.org/x/image/draw"
)

// processImage decodes data, scales it down to maxWidth when wider and
// re-encodes it as JPEG. A maxWidth of zero keeps the original size.
func processImage(data []byte, maxWidth, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func imageKeyFor(articleID, originalName string) string {
	base := strings.TrimSuffix(path.Base(originalName), path.Ext(originalName))
	slug := util.Slugify(base)
	if slug == "" {
		slug = "main"
	}
	return "articles/" + articleID + "/" + slug + ".jpg"
}
