// Package preprocess turns uploaded image bytes into the classifier's input tensor.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/timmy/producelens/internal/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultImageSize is the square input edge expected by the classifier.
const DefaultImageSize = 224

// DefaultMaxPixels caps the decoded width*height of an upload.
const DefaultMaxPixels = 2 * 89478485

// Preprocessor converts encoded images to [1, size, size, 3] float32 tensors
// with channel values in [0, 1]. It holds no mutable state.
type Preprocessor struct {
	size      int
	maxPixels int64
	filter    resize.InterpolationFunction
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithMaxPixels sets the largest width*height Process will decode.
// n <= 0 keeps DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(p *Preprocessor) {
		if n > 0 {
			p.maxPixels = n
		}
	}
}

// New creates a Preprocessor for the given square size; size <= 0 selects DefaultImageSize.
func New(size int, opts ...Option) *Preprocessor {
	if size <= 0 {
		size = DefaultImageSize
	}
	p := &Preprocessor{size: size, maxPixels: DefaultMaxPixels, filter: resize.Bicubic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the square edge length of produced tensors.
func (p *Preprocessor) Size() int {
	return p.size
}

// ImageInfo describes an encoded image without decoding its pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Inspect reads the header of an encoded image.
func Inspect(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Process decodes data, drops alpha, stretches the image to size x size and
// scales every 8-bit channel value by 1/255. Identical input bytes always
// yield an identical tensor. Images with no pixels or more than the
// configured pixel ceiling fail with domain.ErrDecode before the full decode.
func (p *Preprocessor) Process(data []byte) (*domain.Tensor, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrDecode)
	}
	if pixels := int64(info.Width) * int64(info.Height); pixels > p.maxPixels {
		return nil, fmt.Errorf("%w: image of %dx%d exceeds %d pixels",
			domain.ErrDecode, info.Width, info.Height, p.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrDecode)
	}
	return p.ProcessImage(img), nil
}

// ProcessImage runs the pixel steps of Process on an already decoded image.
// An empty image yields an all-zero tensor.
func (p *Preprocessor) ProcessImage(img image.Image) *domain.Tensor {
	if img.Bounds().Empty() {
		return domain.NewImageTensor(p.size)
	}
	rgb := toOpaqueRGBA(img)
	resized := resize.Resize(uint(p.size), uint(p.size), rgb, p.filter)
	return p.toTensor(resized)
}

// toOpaqueRGBA copies img into an RGBA image whose alpha is fully opaque.
// Translucent pixels keep their straight (non-premultiplied) color values.
func toOpaqueRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.CMYK:
		// Always opaque; draw's conversion matches the per-pixel color model.
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := x * 4
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = 0xff
		}
	}
	return dst
}

func (p *Preprocessor) toTensor(img image.Image) *domain.Tensor {
	t := domain.NewImageTensor(p.size)
	data := t.Data

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < p.size; y++ {
			row := rgba.Pix[y*rgba.Stride:]
			for x := 0; x < p.size; x++ {
				src := x * 4
				dst := (y*p.size + x) * 3
				data[dst+0] = float32(row[src+0]) / 255
				data[dst+1] = float32(row[src+1]) / 255
				data[dst+2] = float32(row[src+2]) / 255
			}
		}
		return t
	}

	b := img.Bounds()
	for y := 0; y < p.size; y++ {
		for x := 0; x < p.size; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			dst := (y*p.size + x) * 3
			data[dst+0] = float32(c.R) / 255
			data[dst+1] = float32(c.G) / 255
			data[dst+2] = float32(c.B) / 255
		}
	}
	return t
}
