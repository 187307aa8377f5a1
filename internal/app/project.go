package app

import (
	"encoding/json"
	"fmt"
	"os"

	"dotblot-quant/internal/grid"
	"dotblot-quant/pkg/geometry"
)

// ProjectFile is the JSON structure of a saved session. Image pixel data is
// not embedded; images are reloaded from their recorded paths so the restored
// lattice lands on exactly the same pixels.
type ProjectFile struct {
	Version    int                `json:"version"`
	ImagePaths []string           `json:"images,omitempty"`
	Current    int                `json:"current"`
	Saturation float64            `json:"saturation"`
	Corners    []geometry.Point2D `json:"corners,omitempty"`
	Params     grid.Params        `json:"grid"`
}

const projectVersion = 1

// SaveProject writes the session to a project file.
func (s *Session) SaveProject(path string) error {
	s.mu.RLock()
	proj := ProjectFile{
		Version:    projectVersion,
		ImagePaths: append([]string(nil), s.paths...),
		Current:    s.current,
		Saturation: s.saturation,
		Corners:    s.def.Corners(),
		Params:     s.grid.Params(),
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	s.Emit(EventProjectSaved, path)
	return nil
}

// LoadProject resets the session and restores it from a project file. Images
// are reloaded from their recorded paths; a missing image aborts the load.
func (s *Session) LoadProject(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project: %w", err)
	}
	var proj ProjectFile
	if err := json.Unmarshal(data, &proj); err != nil {
		return fmt.Errorf("failed to parse project: %w", err)
	}

	s.Reset()
	for _, p := range proj.ImagePaths {
		if err := s.LoadImage(p); err != nil {
			return err
		}
	}
	if proj.Current >= 0 && proj.Current < len(proj.ImagePaths) {
		if err := s.SelectImage(proj.Current); err != nil {
			return err
		}
	}
	s.SetSaturation(proj.Saturation)

	s.mu.Lock()
	s.grid.SetParams(proj.Params)
	// Replay the corner picks through the state machine so the definition
	// lands in the same state it was saved in.
	if len(proj.Corners) == 3 {
		s.def.Start()
		for _, c := range proj.Corners {
			s.def.Click(c)
		}
		s.grid.SetCorners(s.def.Corners())
	}
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	return nil
}
