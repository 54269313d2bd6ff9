package pipeline

import (
	"errors"
	"fmt"

	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// PassResult records the outcome of one transform pass.
type PassResult struct {
	Name string
	Err  error
}

// Result collects every pass outcome of a pipeline run so failures can be
// reported together instead of silently continuing.
type Result struct {
	Passes []PassResult

	// Aborted is set when a fatal pass stopped the run early.
	Aborted bool
}

func (r *Result) record(name string, err error) {
	r.Passes = append(r.Passes, PassResult{Name: name, Err: err})
}

// Err returns the aggregated pass failures, nil when every pass succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Passes {
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, p.Err))
		}
	}
	return errors.Join(errs...)
}

type pass struct {
	name string
	// fatal passes abort the run; the rest are recorded and reported at
	// the end
	fatal bool
	run   func(*scene.Scene, *Config) error
}

func passes() []pass {
	return []pass{
		{"strip-animations", false, func(s *scene.Scene, _ *Config) error {
			return StripAnimations(s)
		}},
		{"process-textures", false, ProcessTextures},
		{"apply-image-material", true, func(s *scene.Scene, cfg *Config) error {
			if cfg.ApplyTexture == "" {
				return nil
			}
			return ApplyImageMaterial(s, cfg.ApplyTexture)
		}},
		{"decimate", false, func(s *scene.Scene, cfg *Config) error {
			return Decimate(s, cfg.Ratio)
		}},
		{"fix-origin", false, func(s *scene.Scene, cfg *Config) error {
			if !cfg.FixOrigin {
				return nil
			}
			return FixOrigin(s)
		}},
	}
}

// Run executes the transform passes in order over the scene. The returned
// Result carries every pass outcome; the error aggregates the failures.
func Run(s *scene.Scene, cfg *Config) (*Result, error) {
	result := &Result{}
	for _, p := range passes() {
		err := p.run(s, cfg)
		result.record(p.name, err)
		if err != nil {
			logging.Errorf("pass %s: %v", p.name, err)
			if p.fatal {
				result.Aborted = true
				return result, result.Err()
			}
		}
	}
	return result, result.Err()
}
