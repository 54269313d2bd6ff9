package pipeline

import (
	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// FixOrigin re-homes every object origin to the main mesh's bounding-box
// bottom center and moves that point to the world origin. Meshes parented
// to an armature keep their offset relative to it; everything else ends up
// at translation zero.
func FixOrigin(s *scene.Scene) error {
	main := s.MainMesh()
	if main == nil {
		return nil
	}
	pivot := main.WorldBounds().BottomCenter()
	logging.Infof("origin pivot (%g, %g, %g)", pivot.X, pivot.Y, pivot.Z)

	var armOffset geom.Vector3
	if s.Armature != nil {
		armOffset = s.Armature.Translation
		s.Armature.Translation = geom.Vector3{}
		// move the skeleton by -pivot too, folding the old armature
		// offset into the root bones
		for _, b := range s.Armature.Bones {
			if b.Parent < 0 {
				b.Translation = *b.Translation.Add(&armOffset).Sub(pivot)
			}
		}
	}
	for _, m := range s.Meshes {
		var newT geom.Vector3
		if m.ParentIsArmature && s.Armature != nil {
			newT = *m.Translation.Sub(&armOffset)
		}
		// shift locals so the world result moves by exactly -pivot
		shift := *m.Translation.Sub(pivot).Sub(&newT)
		m.Transform(func(v *geom.Vector3) {
			*v = *v.Add(&shift)
		})
		m.Translation = newT
	}
	return nil
}
