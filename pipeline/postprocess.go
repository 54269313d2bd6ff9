package pipeline

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vibe3d/lowpoly/logging"
)

// Postprocess runs the best-effort external steps after export. Failures
// are logged and ignored; the exported file keeps its current state.
func Postprocess(outPath string, cfg *Config) {
	if cfg.FixOrigin && strings.ToLower(filepath.Ext(outPath)) == ".glb" {
		rerunOriginFix(outPath)
	}
	if cfg.WebP {
		convertWebP(outPath)
	}
}

// rerunOriginFix re-applies the origin fix in an isolated child process
// against the exported file. LOWPOLY_PATH overrides the executable.
func rerunOriginFix(path string) {
	exe := os.Getenv("LOWPOLY_PATH")
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			logging.Warnf("origin fix subprocess: %v", err)
			return
		}
		exe = self
	}
	out, err := exec.Command(exe, "fix-origin", path, path).CombinedOutput()
	if err != nil {
		logging.Errorf("origin fix subprocess: %v\n%s", err, out)
		return
	}
	logging.Infof("origin fix subprocess done")
}

// convertWebP rewrites the exported file's textures as WebP via
// gltf-transform and logs the size reduction.
func convertWebP(path string) {
	before := fileSize(path)
	out, err := exec.Command("npx", "gltf-transform", "webp", path, path).CombinedOutput()
	if err != nil {
		logging.Errorf("webp conversion: %v\n%s", err, out)
		return
	}
	after := fileSize(path)
	if before > 0 && after > 0 {
		logging.Infof("webp: %d -> %d bytes (%.1f%% reduction)",
			before, after, 100*(1-float64(after)/float64(before)))
	}
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
