package sampling

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var ErrEmptyRaster = errors.New("raster must have positive width and height")

// Raster is an immutable width x height grid of non-premultiplied RGBA
// pixels, 4 bytes per pixel in row-major order.
type Raster struct {
	width  int
	height int
	pix    []uint8
}

func NewRaster(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, ErrEmptyRaster
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyRaster
	}
	nrgba := imaging.Clone(img)
	pix := make([]uint8, 0, b.Dx()*b.Dy()*4)
	for y := 0; y < nrgba.Rect.Dy(); y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+nrgba.Rect.Dx()*4]
		pix = append(pix, row...)
	}
	return &Raster{width: nrgba.Rect.Dx(), height: nrgba.Rect.Dy(), pix: pix}, nil
}

// NewRasterFromPixels copies pix, which must hold exactly width*height RGBA
// quadruples.
func NewRasterFromPixels(width, height int, pix []uint8) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyRaster
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pix), width*height*4)
	}
	cp := make([]uint8, len(pix))
	copy(cp, pix)
	return &Raster{width: width, height: height, pix: cp}, nil
}

func (r *Raster) Width() int  { return r.width }
func (r *Raster) Height() int { return r.height }

func (r *Raster) rgbaAt(x, y int) (uint8, uint8, uint8, uint8) {
	i := (y*r.width + x) * 4
	return r.pix[i], r.pix[i+1], r.pix[i+2], r.pix[i+3]
}
