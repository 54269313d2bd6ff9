package pipeline

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// flatColor is the diffuse used when textures are removed.
var flatColor = geom.Vector4{X: 0.8, Y: 0.8, Z: 0.8, W: 1}

// ProcessTextures resizes and re-encodes scene images. Normal maps (images
// referenced from a material's normal slot) get their own target size and
// always stay PNG; everything else follows the configured format.
func ProcessTextures(s *scene.Scene, cfg *Config) error {
	if cfg.KeepOriginalTextures || cfg.ApplyTexture != "" {
		return nil
	}
	if cfg.RemoveTextures {
		s.RemoveImages()
		mat := scene.NewMaterial("FlatShaded")
		mat.BaseColor = flatColor
		s.ReplaceMaterials(mat)
		logging.Infof("textures removed, flat material applied")
		return nil
	}

	normal := map[int]bool{}
	for _, mat := range s.Materials {
		if mat.NormalTexture != nil {
			normal[*mat.NormalTexture] = true
		}
	}

	for i, img := range s.Images {
		if img.Image == nil {
			continue
		}
		target := cfg.TextureSize
		format := cfg.TextureFormat
		if normal[i] {
			target = cfg.NormalMapSize
			format = FormatPNG
		}
		resized := resizeIfLarger(img.Image, target)
		mime := "image/png"
		if format == FormatJPEG {
			mime = "image/jpeg"
		}
		if resized == img.Image && img.MimeType == mime && img.Data != nil {
			continue
		}
		data, err := encodeTexture(resized, format, cfg.TextureQuality)
		if err != nil {
			logging.Warnf("texture %s: %v", img.Name, err)
			continue
		}
		logging.Infof("texture %s: %dx%d -> %dx%d %s", img.Name,
			img.Width(), img.Height(),
			resized.Bounds().Dx(), resized.Bounds().Dy(), format)
		img.Image = resized
		img.Data = data
		img.MimeType = mime
	}
	return nil
}

// resizeIfLarger downscales so the longest side equals target, preserving
// aspect. Images at or below the target are returned unchanged.
func resizeIfLarger(img image.Image, target int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if target <= 0 || longest <= target {
		return img
	}
	nw := w * target / longest
	nh := h * target / longest
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeTexture(img image.Image, format string, quality int) ([]byte, error) {
	w := new(bytes.Buffer)
	if format == FormatJPEG {
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	} else {
		if err := png.Encode(w, img); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
