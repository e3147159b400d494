package server

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Visualization is one generated HTML artifact discovered in the output dir.
type Visualization struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Dir            string
	Visualizations []Visualization
}

// NewServerContext scans the output directory for generated visualizations.
// Companion GeoJSON files are served as-is and not listed.
func NewServerContext(dir string) (*ServerContext, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ctx := &ServerContext{Dir: dir}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}

		name := strings.TrimSuffix(e.Name(), ".html")
		ctx.Visualizations = append(ctx.Visualizations, Visualization{
			Name: name,
			File: e.Name(),
		})

		log.Debug().Str("name", name).Msg("Visualization registered")
	}

	sort.Slice(ctx.Visualizations, func(i, j int) bool {
		return ctx.Visualizations[i].Name < ctx.Visualizations[j].Name
	})

	log.Info().
		Str("dir", dir).
		Int("count", len(ctx.Visualizations)).
		Msg("Server context initialized")

	return ctx, nil
}

// resolve maps a requested file name to an on-disk path inside Dir, rejecting
// anything that escapes the directory.
func (s *ServerContext) resolve(name string) (string, bool) {
	clean := filepath.Clean("/" + name)
	path := filepath.Join(s.Dir, clean)

	rel, err := filepath.Rel(s.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return path, true
}
