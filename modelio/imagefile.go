package modelio

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
)

// LoadImageFile decodes a texture file. TGA gets a dedicated retry because
// the format has no magic bytes for image.Decode to sniff.
func LoadImageFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return decodeImageBytes(data, filepath.Ext(path))
}

func decodeImageBytes(data []byte, ext string) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil && strings.ToLower(ext) == ".tga" {
		if timg, terr := tga.Decode(bytes.NewReader(data)); terr == nil {
			return timg, "tga", nil
		}
	}
	return img, format, err
}
