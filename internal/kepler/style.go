package kepler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrStyleFormat indicates a style file with an unrecognized extension.
var ErrStyleFormat = eris.New("kepler: unknown style file format")

// LoadStyle reads layer visConfig overrides from a JSON or YAML file.
// The format is picked by extension.
func LoadStyle(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "kepler: read style file %s", path)
	}

	style := make(map[string]any)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &style); err != nil {
			return nil, eris.Wrapf(err, "kepler: parse style file %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &style); err != nil {
			return nil, eris.Wrapf(err, "kepler: parse style file %s", path)
		}
	default:
		return nil, eris.Wrapf(ErrStyleFormat, "%s", path)
	}

	return style, nil
}
