package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ratio != 0.15 || cfg.TextureSize != 512 || cfg.TextureFormat != FormatPNG ||
		cfg.TextureQuality != 90 || !cfg.FixOrigin || cfg.GLB || cfg.WebP {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.NormalMapSize != cfg.TextureSize {
		t.Errorf("normal map size should default to texture size, got %d", cfg.NormalMapSize)
	}
}

func TestPresetTable(t *testing.T) {
	tests := []struct {
		quality string
		ratio   float64
		size    int
		format  string
		texq    int
		keep    bool
	}{
		{"1", 0.05, 256, FormatJPEG, 75, false},
		{"2", 0.1, 512, FormatJPEG, 85, false},
		{"3", 0.15, 1024, FormatPNG, 90, false},
		{"4", 0.25, 2048, FormatPNG, 90, false},
		{"5", 0.4, 4096, FormatPNG, 90, true},
	}
	for _, tt := range tests {
		cfg, err := ParseArgs([]string{"--quality", tt.quality})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Ratio != tt.ratio || cfg.TextureSize != tt.size ||
			cfg.TextureFormat != tt.format || cfg.TextureQuality != tt.texq ||
			cfg.KeepOriginalTextures != tt.keep {
			t.Errorf("quality %s: %+v", tt.quality, cfg)
		}
	}
}

func TestPresetOverride(t *testing.T) {
	cfg, err := ParseArgs([]string{"--quality", "1", "--ratio", "0.3", "--texture-format", "png"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ratio != 0.3 {
		t.Errorf("ratio: %v", cfg.Ratio)
	}
	if cfg.TextureFormat != FormatPNG {
		t.Errorf("format: %v", cfg.TextureFormat)
	}
	// untouched preset fields survive
	if cfg.TextureSize != 256 || cfg.TextureQuality != 75 {
		t.Errorf("preset fields: %+v", cfg)
	}
}

func TestUnknownQualityKeepsDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"--quality", "9"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ratio != 0.15 || cfg.TextureSize != 512 {
		t.Errorf("unknown quality changed config: %+v", cfg)
	}
}

func TestTextureQualityClamp(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"150", 100},
		{"-5", 0},
		{"50", 50},
		{"abc", 90},
	}
	for _, tt := range tests {
		cfg, err := ParseArgs([]string{"--texture-quality", tt.in})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.TextureQuality != tt.want {
			t.Errorf("%s: got %d want %d", tt.in, cfg.TextureQuality, tt.want)
		}
	}
}

func TestNormalMapSize(t *testing.T) {
	cfg, _ := ParseArgs([]string{"--texture-size", "2048"})
	if cfg.NormalMapSize != 2048 {
		t.Errorf("follow texture-size: %d", cfg.NormalMapSize)
	}
	cfg, _ = ParseArgs([]string{"--texture-size", "2048", "--normal-map-size", "128"})
	if cfg.NormalMapSize != 128 {
		t.Errorf("explicit: %d", cfg.NormalMapSize)
	}
}

func TestInvalidRatio(t *testing.T) {
	for _, v := range []string{"abc", "0", "-0.5", "1.5"} {
		if _, err := ParseArgs([]string{"--ratio", v}); err == nil {
			t.Errorf("ratio %q should be an error", v)
		}
	}
}

func TestInvalidNumericKeepsPrevious(t *testing.T) {
	cfg, err := ParseArgs([]string{"--texture-size", "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TextureSize != 512 {
		t.Errorf("texture-size: %d", cfg.TextureSize)
	}
}

func TestRemoveTexturesClearsKeep(t *testing.T) {
	cfg, err := ParseArgs([]string{"--quality", "5", "--remove-textures"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.RemoveTextures || cfg.KeepOriginalTextures {
		t.Errorf("%+v", cfg)
	}
}

func TestWebPPreset(t *testing.T) {
	cfg, err := ParseArgs([]string{"--webp"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.WebP || !cfg.GLB {
		t.Errorf("webp should imply glb output: %+v", cfg)
	}
	if cfg.TextureFormat != FormatJPEG || cfg.TextureQuality != 30 || cfg.TextureSize != 32 {
		t.Errorf("webp preset: %+v", cfg)
	}
}

func TestResolveOutputPath(t *testing.T) {
	if _, err := ResolveOutputPath("out.glb", false); err == nil {
		t.Error("non-fbx output without --glb should be rejected")
	}
	if p, err := ResolveOutputPath("out.fbx", false); err != nil || p != "out.fbx" {
		t.Errorf("%v %v", p, err)
	}
	if p, _ := ResolveOutputPath("out.fbx", true); p != "out.glb" {
		t.Errorf("rewrite: %s", p)
	}
	if p, _ := ResolveOutputPath("out.glb", true); p != "out.glb" {
		t.Errorf("keep: %s", p)
	}
}

func TestPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := "presets:\n  2:\n    ratio: 0.2\n    texture_size: 333\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseArgs([]string{"--preset-file", path, "--quality", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ratio != 0.2 || cfg.TextureSize != 333 {
		t.Errorf("preset file override: %+v", cfg)
	}
	// untouched fields keep the built-in values
	if cfg.TextureFormat != FormatJPEG || cfg.TextureQuality != 85 {
		t.Errorf("builtin fields: %+v", cfg)
	}
}
