package scenegen

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func TestGenerate(t *testing.T) {
	doc := Generate()
	if len(doc.Entities) != 1001 {
		t.Fatalf("entities: %d", len(doc.Entities))
	}
	cam := doc.Entities[0]
	if cam.ID != 0 || cam.Name != "camera" || cam.Components.Camera == nil {
		t.Errorf("camera entity: %+v", cam)
	}
	seen := map[int]bool{}
	for _, e := range doc.Entities[1:] {
		if e.ID < 1 || e.ID > 1000 {
			t.Fatalf("id out of range: %d", e.ID)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id: %d", e.ID)
		}
		seen[e.ID] = true
		if e.Components.Transform == nil || e.Components.MeshRenderer == nil || e.Components.LOD == nil {
			t.Fatalf("entity %d missing components", e.ID)
		}
		lod := e.Components.LOD
		if lod.DistanceThresholds[0] >= lod.DistanceThresholds[1] {
			t.Errorf("entity %d thresholds not increasing: %v", e.ID, lod.DistanceThresholds)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteFile(Generate(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "version", "entities", "metadata"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
}
