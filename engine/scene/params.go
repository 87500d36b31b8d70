// Package scene holds the plain-data parameter block the ray-marcher renders: scene-wide uniforms,
// the camera and the voxel grid, together with their GPU buffer layouts.
//
// The application loop owns a single mutable Params. The UI edits it between dispatches and every
// dispatch receives an immutable Snapshot, so the renderer never aliases the editable copy.
package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/jinzhu/copier"
)

// ErrInvalidResolution is returned when a render resolution is zero or not a multiple of WorkgroupSize.
var ErrInvalidResolution = errors.New("resolution must be a non-zero multiple of the workgroup size")

// Params is the mutable scene parameter block owned by the application loop.
type Params struct {
	Uniforms Uniforms      `toml:"uniforms" yaml:"uniforms"`
	Camera   camera.Camera `toml:"camera" yaml:"camera"`
	Grid     VoxelGrid     `toml:"voxels" yaml:"voxels"`
}

// Snapshot is an immutable copy of Params handed to a single dispatch.
// Its VoxelAmount always equals len(Grid).
type Snapshot struct {
	Uniforms Uniforms
	Camera   camera.Camera
	Grid     VoxelGrid
}

// NewParams creates a parameter block populated with the startup defaults and applies the options.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - *Params: the new parameter block
func NewParams(options ...ParamsBuilderOption) *Params {
	p := &Params{
		Uniforms: DefaultUniforms(),
		Camera:   camera.Default(),
		Grid:     DefaultGrid(),
	}
	for _, option := range options {
		option(p)
	}
	p.Uniforms.VoxelAmount = uint32(len(p.Grid))
	return p
}

// ValidateResolution checks that both dimensions are non-zero multiples of WorkgroupSize.
//
// Parameters:
//   - res: the resolution as [width, height]
//
// Returns:
//   - error: ErrInvalidResolution wrapped with the offending size, nil when valid
func ValidateResolution(res [2]uint32) error {
	if res[0] == 0 || res[1] == 0 || res[0]%WorkgroupSize != 0 || res[1]%WorkgroupSize != 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidResolution, res[0], res[1])
	}
	return nil
}

// Snapshot validates the parameter block and returns a deep copy of it for a dispatch.
// VoxelAmount is synced to the grid length on both the snapshot and the owner.
//
// Returns:
//   - Snapshot: the immutable copy
//   - error: a camera or resolution invariant violation
func (p *Params) Snapshot() (Snapshot, error) {
	if err := p.Camera.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := ValidateResolution(p.Uniforms.Resolution); err != nil {
		return Snapshot{}, err
	}
	p.Uniforms.VoxelAmount = uint32(len(p.Grid))

	var s Snapshot
	if err := copier.CopyWithOption(&s, p, copier.Option{DeepCopy: true}); err != nil {
		return Snapshot{}, fmt.Errorf("failed to snapshot scene parameters: %w", err)
	}
	return s, nil
}

// Clone returns a deep copy of the parameter block.
//
// Returns:
//   - *Params: the copy
func (p *Params) Clone() *Params {
	c := &Params{}
	if err := copier.CopyWithOption(c, p, copier.Option{DeepCopy: true}); err != nil {
		// Params holds only values and a slice of values, copier cannot fail on it.
		panic(fmt.Sprintf("scene: failed to clone params: %v", err))
	}
	return c
}
