package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/modelio"
	"github.com/vibe3d/lowpoly/scene"
)

// ApplyFlatMaterial replaces every material on every mesh with a single
// flat-colored diffuse material and drops all images.
func ApplyFlatMaterial(s *scene.Scene, color geom.Vector4) {
	s.RemoveImages()
	mat := scene.NewMaterial("Shaded")
	mat.BaseColor = color
	s.ReplaceMaterials(mat)
	logging.Infof("applied flat material (%g, %g, %g, %g)", color.X, color.Y, color.Z, color.W)
}

// ApplyImageMaterial replaces every material with a single image-textured
// one. A missing or unreadable image file is an error; the caller treats it
// as fatal.
func ApplyImageMaterial(s *scene.Scene, path string) error {
	img, format, err := modelio.LoadImageFile(path)
	if err != nil {
		return fmt.Errorf("apply-texture %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.RemoveImages()
	s.Images = append(s.Images, &scene.Image{
		Name: name, MimeType: "image/" + format, Image: img,
	})
	mat := scene.NewMaterial(name)
	tex := len(s.Images) - 1
	mat.BaseColorTexture = &tex
	s.ReplaceMaterials(mat)
	logging.Infof("applied image material %s (%dx%d)", path,
		img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
