package scene

import "github.com/go-gl/mathgl/mgl32"

// WorkgroupSize is the edge length of the square compute workgroup the ray-marcher runs with.
// Both render resolution dimensions must be multiples of it.
const WorkgroupSize = 16

// Uniforms is the scene-wide parameter record consumed by the ray-marcher.
// Time, Frames and VoxelAmount are maintained by the engine and never read from config files.
type Uniforms struct {
	// Time is the number of seconds since program start.
	Time float32 `toml:"-" yaml:"-"`

	// Frames is the monotonic presented-frame counter.
	Frames uint32 `toml:"-" yaml:"-"`

	// MaxSteps caps the number of ray-march iterations per pixel.
	MaxSteps uint32 `toml:"max_steps" yaml:"max_steps"`

	// VoxelAmount mirrors the grid length for the shader. Synced on every snapshot.
	VoxelAmount uint32 `toml:"-" yaml:"-"`

	// Resolution is the output image size in pixels. Fixed for the lifetime of a tracer.
	Resolution [2]uint32 `toml:"resolution" yaml:"resolution"`

	// BackgroundColor is written for rays that hit nothing.
	BackgroundColor mgl32.Vec4 `toml:"background_color" yaml:"background_color"`

	// FloorColor is the albedo of the y = -0.5 ground plane.
	FloorColor mgl32.Vec4 `toml:"floor_color" yaml:"floor_color"`

	// ObjectColor tints every voxel albedo. White leaves voxel colors unchanged.
	ObjectColor mgl32.Vec3 `toml:"object_color" yaml:"object_color"`

	// LightPosition places the single point light relative to the camera position.
	LightPosition mgl32.Vec3 `toml:"light_position" yaml:"light_position"`

	// SunIntensity scales the diffuse light term.
	SunIntensity float32 `toml:"sun_intensity" yaml:"sun_intensity"`

	// Smoothing is the soft-min constant k. Zero or less blends with a hard minimum.
	Smoothing float32 `toml:"smoothing" yaml:"smoothing"`

	// AmbientOcclusion is the number of occlusion samples taken along the surface normal. Zero disables AO.
	AmbientOcclusion int32 `toml:"ambient_occlusion" yaml:"ambient_occlusion"`
}

// DefaultUniforms returns the startup uniforms.
//
// Returns:
//   - Uniforms: the default uniforms
func DefaultUniforms() Uniforms {
	return Uniforms{
		MaxSteps:         50,
		Resolution:       [2]uint32{1088, 1088},
		BackgroundColor:  mgl32.Vec4{0, 0, 0, 1},
		FloorColor:       mgl32.Vec4{0.1, 0.1, 0.1, 1},
		ObjectColor:      mgl32.Vec3{1, 1, 1},
		LightPosition:    mgl32.Vec3{0, 0.25, 0},
		SunIntensity:     1,
		Smoothing:        0,
		AmbientOcclusion: 20,
	}
}

// GPU converts the uniforms into their uniform buffer layout.
//
// Returns:
//   - GPUUniforms: the GPU-aligned uniforms record
func (u Uniforms) GPU() GPUUniforms {
	return GPUUniforms{
		Time:             u.Time,
		Frames:           u.Frames,
		MaxSteps:         u.MaxSteps,
		VoxelAmount:      u.VoxelAmount,
		Resolution:       u.Resolution,
		BackgroundColor:  [4]float32(u.BackgroundColor),
		FloorColor:       [4]float32(u.FloorColor),
		ObjectColor:      [3]float32(u.ObjectColor),
		LightPosition:    [3]float32(u.LightPosition),
		SunIntensity:     u.SunIntensity,
		Smoothing:        u.Smoothing,
		AmbientOcclusion: u.AmbientOcclusion,
	}
}
