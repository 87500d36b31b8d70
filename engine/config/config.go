// Package config loads and saves scene parameter files and watches them for live edits.
//
// A scene file is TOML (.toml) or YAML (.yaml, .yml) and may set any subset of the uniforms and the
// camera; omitted fields keep their defaults. A voxels list, when present, replaces the default grid.
// Engine-maintained fields (time, frames, voxel count) are never read or written.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultBaseName is the scene file name looked up in the working directory, without extension.
const DefaultBaseName = "voxeltracer"

// ErrUnsupportedFormat is returned for file extensions other than .toml, .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported scene file format")

// Format identifies the encoding of a scene file.
type Format int

const (
	// FormatTOML encodes scene files with go-toml.
	FormatTOML Format = iota
	// FormatYAML encodes scene files with yaml.v3.
	FormatYAML
)

// document is the on-disk shape of a scene file.
type document struct {
	Uniforms scene.Uniforms   `toml:"uniforms" yaml:"uniforms"`
	Camera   camera.Camera    `toml:"camera" yaml:"camera"`
	Voxels   *scene.VoxelGrid `toml:"voxels" yaml:"voxels"`
}

// FormatOf returns the format for a path's extension.
//
// Parameters:
//   - path: the scene file path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnsupportedFormat for unknown extensions
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Find returns the first existing scene file in dir, trying .toml, .yaml then .yml.
//
// Parameters:
//   - dir: the directory to search
//
// Returns:
//   - string: the scene file path
//   - bool: false when no scene file exists
func Find(dir string) (string, bool) {
	for _, ext := range []string{".toml", ".yaml", ".yml"} {
		path := filepath.Join(dir, DefaultBaseName+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Decode overlays an encoded scene document onto the startup defaults.
//
// Parameters:
//   - data: the encoded document
//   - format: the document encoding
//
// Returns:
//   - *scene.Params: the decoded and validated parameter block
//   - error: a decode or validation error
func Decode(data []byte, format Format) (*scene.Params, error) {
	doc := document{
		Uniforms: scene.DefaultUniforms(),
		Camera:   camera.Default(),
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}

	options := []scene.ParamsBuilderOption{
		scene.WithUniforms(doc.Uniforms),
		scene.WithCamera(doc.Camera),
	}
	if doc.Voxels != nil {
		options = append(options, scene.WithGrid(*doc.Voxels))
	}
	p := scene.NewParams(options...)

	if _, err := p.Snapshot(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode serializes a parameter block, including its voxel grid.
//
// Parameters:
//   - p: the parameter block
//   - format: the encoding to use
//
// Returns:
//   - []byte: the encoded document
//   - error: an encode error
func Encode(p *scene.Params, format Format) ([]byte, error) {
	grid := p.Grid
	if grid == nil {
		grid = scene.VoxelGrid{}
	}
	doc := document{Uniforms: p.Uniforms, Camera: p.Camera, Voxels: &grid}
	switch format {
	case FormatYAML:
		return yaml.Marshal(&doc)
	default:
		return toml.Marshal(&doc)
	}
}

// Load reads a scene file.
//
// Parameters:
//   - path: the scene file, its extension selects the format
//
// Returns:
//   - *scene.Params: the parameter block
//   - error: a format, read, decode or validation error wrapped with the path
func Load(path string) (*scene.Params, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	return p, nil
}

// Save writes a parameter block to a scene file, replacing it if present.
//
// Parameters:
//   - path: the scene file, its extension selects the format
//   - p: the parameter block
//
// Returns:
//   - error: a format, encode or write error
func Save(path string, p *scene.Params) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(p, format)
	if err != nil {
		return fmt.Errorf("scene file %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
