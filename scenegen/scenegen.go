// Package scenegen builds the LOD performance test-scene fixture: a camera
// plus a grid of 1000 LOD-managed entities, serialized as JSON.
package scenegen

import (
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vibe3d/lowpoly/logging"
)

const (
	DefaultOutput = "testlod-performance.json"
	entityCount   = 1000
)

type Document struct {
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Entities []*Entity `json:"entities"`
	Metadata Metadata  `json:"metadata"`
}

type Metadata struct {
	Description string   `json:"description"`
	TestCases   []string `json:"test_cases"`
	EntityCount int      `json:"entity_count"`
}

type Entity struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Components Components `json:"components"`
}

type Components struct {
	Camera       *Camera       `json:"Camera,omitempty"`
	Transform    *Transform    `json:"Transform,omitempty"`
	MeshRenderer *MeshRenderer `json:"MeshRenderer,omitempty"`
	LOD          *LODComponent `json:"LODComponent,omitempty"`
}

type Camera struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	FOV      float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}

type Transform struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

type MeshRenderer struct {
	MeshPath     string `json:"mesh_path"`
	MaterialPath string `json:"material_path"`
}

type LODComponent struct {
	Path               string     `json:"path"`
	HighQualityPath    string     `json:"high_quality_path"`
	LowQualityPath     string     `json:"low_quality_path"`
	DistanceThresholds [2]float64 `json:"distance_thresholds"`
	QualityOverride    *string    `json:"quality_override"`
	CurrentQuality     string     `json:"current_quality"`
}

// Generate builds the fixture document: entity 0 is the camera, entities
// 1..1000 fill a grid with deterministic position jitter.
func Generate() *Document {
	doc := &Document{
		Name:    "testlod-performance",
		Version: "1.0",
		Metadata: Metadata{
			Description: "LOD performance test scene with 1000+ entities",
			TestCases: []string{
				"LOD calculation performance with many entities",
				"Memory usage patterns",
				"Batch processing efficiency",
				"Thread safety under load",
			},
			EntityCount: entityCount,
		},
	}
	doc.Entities = append(doc.Entities, &Entity{
		ID:   0,
		Name: "camera",
		Components: Components{
			Camera: &Camera{
				Position: [3]float64{0, 5, 30},
				Rotation: [4]float64{0, 0, 0, 1},
				FOV:      60,
				Near:     0.1,
				Far:      1000,
			},
		},
	})

	gridSize := int(math.Sqrt(entityCount)) + 1
	id := 1
	for x := 0; x < gridSize && id <= entityCount; x++ {
		for z := 0; z < gridSize && id <= entityCount; z++ {
			doc.Entities = append(doc.Entities, gridEntity(id, x, z, gridSize))
			id++
		}
	}
	return doc
}

func gridEntity(id, x, z, gridSize int) *Entity {
	posX := (float64(x)-float64(gridSize)/2)*2.0 + float64(x%3)*0.5
	posZ := (float64(z)-float64(gridSize)/2)*2.0 + float64(z%3)*0.5
	posY := float64((x+z)%3) * 0.5
	mesh := fmt.Sprintf("models/performance_obj_%d.glb", id%10)
	return &Entity{
		ID:   id,
		Name: fmt.Sprintf("lod_entity_%d", id),
		Components: Components{
			Transform: &Transform{
				Position: [3]float64{posX, posY, posZ},
				Rotation: [4]float64{0, 0, 0, 1},
				Scale:    [3]float64{1, 1, 1},
			},
			MeshRenderer: &MeshRenderer{
				MeshPath:     mesh,
				MaterialPath: "materials/default.json",
			},
			LOD: &LODComponent{
				Path:            mesh,
				HighQualityPath: fmt.Sprintf("models/lod/performance_obj_%d_high.glb", id%10),
				LowQualityPath:  fmt.Sprintf("models/lod/performance_obj_%d_low.glb", id%10),
				DistanceThresholds: [2]float64{
					float64(5 + id%5),
					float64(15 + id%10),
				},
				CurrentQuality: "Original",
			},
		},
	}
}

// WriteFile serializes the document as indented JSON.
func WriteFile(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logging.Infof("generated %s with %d entities", path, len(doc.Entities))
	return nil
}
