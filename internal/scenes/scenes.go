// Package scenes loads scene-change boundaries from an av1an scene file.
package scenes

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arkaen/autoboost/internal/errors"
)

// sceneFile mirrors the av1an scenes.json layout. Only end frames matter here.
type sceneFile struct {
	Scenes []scene `json:"scenes"`
}

type scene struct {
	EndFrame int `json:"end_frame"`
}

// Load reads a scene file and returns the frame boundaries: 0 followed by
// each scene's end frame in file order. N+1 boundaries describe N scenes as
// half-open intervals [boundary[i], boundary[i+1]).
func Load(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("cannot read scene file %s", path), err)
	}

	var content sceneFile
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("malformed scene file %s", path), err)
	}
	if len(content.Scenes) == 0 {
		return nil, errors.NewParseError(fmt.Sprintf("scene file %s contains no scenes", path), nil)
	}

	boundaries := make([]int, 0, len(content.Scenes)+1)
	boundaries = append(boundaries, 0)
	for _, s := range content.Scenes {
		boundaries = append(boundaries, s.EndFrame)
	}
	return boundaries, nil
}

// Count returns the number of scenes described by a boundary list.
func Count(boundaries []int) int {
	if len(boundaries) < 2 {
		return 0
	}
	return len(boundaries) - 1
}
