package modelio

import (
	"os"
	"path/filepath"

	"github.com/vibe3d/lowpoly/fbx"
	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// saveFBX writes an ASCII FBX file. Textures are external in FBX, so
// referenced images are written as files next to the output.
func saveFBX(s *scene.Scene, path string) error {
	b := fbx.NewDocumentBuilder("lowpoly")

	matIDs := make([]int64, len(s.Materials))
	for i, mat := range s.Materials {
		matIDs[i] = b.AddMaterial(mat.Name, &mat.BaseColor)
		if mat.BaseColorTexture != nil {
			filename, err := writeTextureFile(s, *mat.BaseColorTexture, path)
			if err != nil {
				logging.Warnf("texture for %s: %v", mat.Name, err)
				continue
			}
			texID := b.AddTexture(s.Images[*mat.BaseColorTexture].Name, filename)
			b.Connect(texID, matIDs[i])
		}
	}

	for _, m := range s.Meshes {
		modelID := b.AddModel(m.Name, &m.Translation)
		b.Connect(modelID, 0)
		b.Connect(addMeshGeometry(b, m, matIDs, modelID), modelID)
	}

	return fbx.Save(b.Root(), path)
}

func addMeshGeometry(b *fbx.DocumentBuilder, m *scene.Mesh, matIDs []int64, modelID int64) int64 {
	// material connection order defines the local indices the layer refers to
	local := map[int]int32{}
	materials := make([]int32, len(m.Triangles))
	faces := make([][]int, len(m.Triangles))
	for i, t := range m.Triangles {
		mat := t.Material
		if mat < 0 || mat >= len(matIDs) {
			mat = 0
		}
		idx, ok := local[mat]
		if !ok {
			idx = int32(len(local))
			local[mat] = idx
			if len(matIDs) > 0 {
				b.Connect(matIDs[mat], modelID)
			}
		}
		materials[i] = idx
		faces[i] = []int{t.V[0], t.V[1], t.V[2]}
	}

	var normals []*geom.Vector3
	if len(m.Normals) == len(m.Vertices) {
		normals = m.Normals
	}
	var uvs []*geom.Vector2
	if len(m.UVs) == len(m.Vertices) {
		uvs = make([]*geom.Vector2, len(m.UVs))
		for i := range m.UVs {
			uvs[i] = &geom.Vector2{X: m.UVs[i].X, Y: 1 - m.UVs[i].Y}
		}
	}
	return b.AddGeometry(m.Name, m.Vertices, faces, normals, uvs, materials)
}

func writeTextureFile(s *scene.Scene, imageIndex int, fbxPath string) (string, error) {
	img := s.Images[imageIndex]
	data, mime, err := encodeImage(img, &ExportOptions{ImageFormat: "AUTO", JPEGQuality: 90})
	if err != nil {
		return "", err
	}
	ext := ".png"
	if mime == "image/jpeg" {
		ext = ".jpg"
	}
	filename := img.Name + ext
	if err := os.WriteFile(filepath.Join(filepath.Dir(fbxPath), filename), data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}
