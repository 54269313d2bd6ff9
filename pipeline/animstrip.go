package pipeline

import (
	"strings"

	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// StripAnimations drops every animation clip. There is no preservation
// option: low-poly background assets never animate.
func StripAnimations(s *scene.Scene) error {
	if len(s.Animations) == 0 {
		return nil
	}
	logging.Infof("stripping animations: %s", strings.Join(s.Animations, ", "))
	s.Animations = nil
	return nil
}
