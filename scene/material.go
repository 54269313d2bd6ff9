package scene

import (
	"image"

	"github.com/vibe3d/lowpoly/geom"
)

type Material struct {
	Name        string
	BaseColor   geom.Vector4
	Metallic    float32
	Roughness   float32
	DoubleSided bool

	// Texture indices into Scene.Images. nil when unused.
	BaseColorTexture *int
	NormalTexture    *int
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		BaseColor: geom.Vector4{X: 1, Y: 1, Z: 1, W: 1},
		Metallic:  0,
		Roughness: 0.5,
	}
}

type Image struct {
	Name     string
	MimeType string
	Image    image.Image

	// Data holds the original encoded bytes. It is cleared when the image
	// is modified so exporters know to re-encode.
	Data []byte
}

func (img *Image) Width() int {
	if img.Image == nil {
		return 0
	}
	return img.Image.Bounds().Dx()
}

func (img *Image) Height() int {
	if img.Image == nil {
		return 0
	}
	return img.Image.Bounds().Dy()
}
