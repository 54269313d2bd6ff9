// Package pipeline implements the low-poly conversion passes and their
// configuration.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/vibe3d/lowpoly/logging"
)

// Texture output formats.
const (
	FormatPNG  = "PNG"
	FormatJPEG = "JPEG"
)

// Config is the conversion configuration. It is built once by ParseArgs and
// read-only afterwards.
type Config struct {
	Ratio                float64
	TextureSize          int
	NormalMapSize        int
	TextureFormat        string
	TextureQuality       int
	RemoveTextures       bool
	KeepOriginalTextures bool
	FixOrigin            bool
	ApplyTexture         string
	GLB                  bool
	WebP                 bool
}

func DefaultConfig() *Config {
	return &Config{
		Ratio:          0.15,
		TextureSize:    512,
		TextureFormat:  FormatPNG,
		TextureQuality: 90,
		FixOrigin:      true,
	}
}

// Preset is a quality-level bundle. TextureQuality < 0 keeps the current
// value.
type Preset struct {
	Ratio                float64
	TextureSize          int
	TextureFormat        string
	TextureQuality       int
	KeepOriginalTextures bool
}

func builtinPresets() map[int]Preset {
	return map[int]Preset{
		1: {Ratio: 0.05, TextureSize: 256, TextureFormat: FormatJPEG, TextureQuality: 75},
		2: {Ratio: 0.1, TextureSize: 512, TextureFormat: FormatJPEG, TextureQuality: 85},
		3: {Ratio: 0.15, TextureSize: 1024, TextureFormat: FormatPNG, TextureQuality: -1},
		4: {Ratio: 0.25, TextureSize: 2048, TextureFormat: FormatPNG, TextureQuality: -1},
		5: {Ratio: 0.4, TextureSize: 4096, TextureFormat: FormatPNG, TextureQuality: -1, KeepOriginalTextures: true},
	}
}

// webpPreset is the aggressive intermediate used before external WebP
// conversion: textures get crushed anyway, so export them tiny.
var webpPreset = Preset{Ratio: 0.15, TextureSize: 32, TextureFormat: FormatJPEG, TextureQuality: 30}

func (c *Config) applyPreset(p Preset) {
	c.Ratio = p.Ratio
	c.TextureSize = p.TextureSize
	c.TextureFormat = p.TextureFormat
	if p.TextureQuality >= 0 {
		c.TextureQuality = p.TextureQuality
	}
	c.KeepOriginalTextures = p.KeepOriginalTextures
}

// ParseArgs resolves a flat token list into a Config. Presets (--webp, then
// --quality) apply first; explicit flags override per field. Most malformed
// values warn and keep the previous value; a malformed --ratio is an error.
func ParseArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()
	presets := builtinPresets()

	if path := tokenValue(args, "--preset-file"); path != "" {
		if err := loadPresetFile(path, presets); err != nil {
			logging.Warnf("preset file %s: %v", path, err)
		}
	}
	if hasToken(args, "--webp") {
		cfg.WebP = true
		cfg.GLB = true
		cfg.applyPreset(webpPreset)
	}
	if v := tokenValue(args, "--quality"); v != "" {
		if q, err := strconv.Atoi(v); err != nil {
			logging.Warnf("invalid quality %q, keeping defaults", v)
		} else if p, ok := presets[q]; !ok {
			logging.Warnf("unknown quality level %d, keeping defaults", q)
		} else {
			cfg.applyPreset(p)
		}
	}

	normalSizeSet := false
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--ratio":
			v := nextToken(args, &i)
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r <= 0 || r > 1 {
				return nil, fmt.Errorf("invalid ratio %q (want a float in (0,1])", v)
			}
			cfg.Ratio = r
		case "--texture-size":
			parseIntToken(nextToken(args, &i), "texture-size", &cfg.TextureSize)
		case "--normal-map-size":
			if parseIntToken(nextToken(args, &i), "normal-map-size", &cfg.NormalMapSize) {
				normalSizeSet = true
			}
		case "--texture-format":
			v := strings.ToUpper(nextToken(args, &i))
			if v != FormatPNG && v != FormatJPEG {
				logging.Warnf("invalid texture-format %q, keeping %s", v, cfg.TextureFormat)
				continue
			}
			cfg.TextureFormat = v
		case "--texture-quality":
			v := nextToken(args, &i)
			if q, err := strconv.Atoi(v); err != nil {
				logging.Warnf("invalid texture-quality %q, keeping %d", v, cfg.TextureQuality)
			} else {
				cfg.TextureQuality = clamp(q, 0, 100)
			}
		case "--remove-textures":
			cfg.RemoveTextures = true
			cfg.KeepOriginalTextures = false
		case "--keep-original-textures":
			cfg.KeepOriginalTextures = true
		case "--no-fix-origin":
			cfg.FixOrigin = false
		case "--apply-texture":
			cfg.ApplyTexture = nextToken(args, &i)
		case "--glb":
			cfg.GLB = true
		case "--webp", "--quality", "--preset-file":
			if args[i] != "--webp" {
				i++ // value consumed in the preset phase
			}
		default:
			logging.Warnf("unknown option %q ignored", args[i])
		}
	}
	if !normalSizeSet || cfg.NormalMapSize <= 0 {
		cfg.NormalMapSize = cfg.TextureSize
	}
	return cfg, nil
}

// ResolveOutputPath applies the output naming rules: FBX output must already
// end in .fbx; GLB output is rewritten to end in .glb.
func ResolveOutputPath(path string, glb bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !glb {
		if ext != ".fbx" {
			return "", fmt.Errorf("output %s must end in .fbx (use --glb for glTF output)", path)
		}
		return path, nil
	}
	if ext == ".glb" {
		return path, nil
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".glb", nil
}

func hasToken(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func tokenValue(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func nextToken(args []string, i *int) string {
	if *i+1 < len(args) {
		*i++
		return args[*i]
	}
	return ""
}

func parseIntToken(v, name string, dst *int) bool {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logging.Warnf("invalid %s %q, keeping %d", name, v, *dst)
		return false
	}
	*dst = n
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type presetFileDoc struct {
	Presets map[int]presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Ratio                *float64 `yaml:"ratio"`
	TextureSize          *int     `yaml:"texture_size"`
	TextureFormat        *string  `yaml:"texture_format"`
	TextureQuality       *int     `yaml:"texture_quality"`
	KeepOriginalTextures *bool    `yaml:"keep_original_textures"`
}

// loadPresetFile overrides entries of the built-in preset table from a YAML
// mapping. Only the fields present in the file change.
func loadPresetFile(path string, presets map[int]Preset) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc presetFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for level, e := range doc.Presets {
		p, ok := presets[level]
		if !ok {
			p = Preset{TextureQuality: -1}
		}
		if e.Ratio != nil {
			p.Ratio = *e.Ratio
		}
		if e.TextureSize != nil {
			p.TextureSize = *e.TextureSize
		}
		if e.TextureFormat != nil {
			p.TextureFormat = strings.ToUpper(*e.TextureFormat)
		}
		if e.TextureQuality != nil {
			p.TextureQuality = clamp(*e.TextureQuality, 0, 100)
		}
		if e.KeepOriginalTextures != nil {
			p.KeepOriginalTextures = *e.KeepOriginalTextures
		}
		presets[level] = p
	}
	return nil
}
