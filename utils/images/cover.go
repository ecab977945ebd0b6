package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pervade/config"
)

// Cover is cover artwork rendered for embedding into a document.
type Cover struct {
	Data   []byte // baseline JPEG with JFIF APP0
	Width  int    // pixels
	Height int    // pixels
}

// PrepareCover renders cover artwork into a JPEG sized for the title page.
// SVG data is rasterized at the configured dimensions, raster formats are
// decoded and resized according to cfg.Resize.
func PrepareCover(data []byte, cfg *config.AssetsConfig, log *zap.Logger) (*Cover, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var img image.Image
	switch {
	case looksLikeSVG(data):
		var err error
		img, err = RasterizeSVGToImage(data, cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize cover SVG: %w", err)
		}
	case filetype.IsImage(data):
		var err error
		img, err = imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode cover image: %w", err)
		}
		img = resizeCover(img, cfg)
	default:
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("cover artwork is not a supported image (detected %q)", kind.Extension)
	}

	if cfg.Grayscale && !isGrayscale(img) {
		log.Debug("Converting cover image to grayscale")
		img = imaging.Grayscale(img)
	}

	out, err := EncodeJPEG(img, cfg.JPEGQuality, DensityPxPerInch, 96, 96)
	if err != nil {
		return nil, fmt.Errorf("unable to encode cover JPEG: %w", err)
	}
	return &Cover{Data: out, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}, nil
}

func resizeCover(img image.Image, cfg *config.AssetsConfig) image.Image {
	switch cfg.Resize {
	case config.ImageResizeModeKeepAR:
		if img.Bounds().Dy() >= cfg.Height {
			break
		}
		return imaging.Resize(img, 0, cfg.Height, imaging.Lanczos)
	case config.ImageResizeModeStretch:
		return imaging.Resize(img, cfg.Width, cfg.Height, imaging.Lanczos)
	}
	return img
}

// looksLikeSVG sniffs for an SVG document. SVG is XML text, magic number
// detection does not apply.
func looksLikeSVG(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	return bytes.Contains(head[:min(len(head), 512)], []byte("<svg"))
}

// isGrayscale reports whether img already has R==G==B everywhere.
func isGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B {
				return false
			}
		}
	}
	return true
}
