package gpu

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

func decodeFile(path string, maxEdge int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := decodeRGBA(f, maxEdge)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// decodeRGBA decodes an image into a tightly packed RGBA buffer with its
// origin at (0,0). Images whose longer edge exceeds maxEdge are scaled down
// preserving aspect ratio; maxEdge <= 0 keeps the source size.
func decodeRGBA(r io.Reader, maxEdge int) (*image.RGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image %dx%d", w, h)
	}

	if maxEdge > 0 && (w > maxEdge || h > maxEdge) {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		return dst, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}
