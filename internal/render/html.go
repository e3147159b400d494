// Package render produces the standalone kepler.gl HTML document.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"text/template"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/maptools/keplerout/internal/kepler"
)

//go:embed index.html.tpl
var indexTemplate string

// Options controls the rendered page.
type Options struct {
	Title       string
	DataID      string
	Label       string
	Attribution string
	MapboxToken string
	Minify      bool
}

type pageData struct {
	Title       string
	DataID      string
	Label       string
	Attribution string
	MapboxToken string
	ConfigJSON  string
	DataJSON    string
}

// Render builds the HTML page embedding the configuration and dataset.
func Render(cfg *kepler.Config, fc kepler.FeatureCollection, opts Options) ([]byte, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal configuration")
	}

	dataJSON, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal dataset")
	}

	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, eris.Wrap(err, "render: parse template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		Title:       opts.Title,
		DataID:      opts.DataID,
		Label:       opts.Label,
		Attribution: opts.Attribution,
		MapboxToken: opts.MapboxToken,
		ConfigJSON:  string(configJSON),
		DataJSON:    string(dataJSON),
	})
	if err != nil {
		return nil, eris.Wrap(err, "render: execute template")
	}

	page := buf.Bytes()

	if opts.Minify {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		m.AddFunc("text/html", html.Minify)
		m.AddFunc("text/javascript", js.Minify)

		minified, err := m.Bytes("text/html", page)
		if err != nil {
			return nil, eris.Wrap(err, "render: minify HTML")
		}

		log.Debug().
			Int("raw_bytes", len(page)).
			Int("minified_bytes", len(minified)).
			Msg("Page minified")

		page = minified
	}

	return page, nil
}

// WriteFile writes the rendered page to disk.
func WriteFile(path string, page []byte) error {
	if err := os.WriteFile(path, page, 0644); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}

	log.Info().Str("path", path).Int("bytes", len(page)).Msg("HTML written")
	return nil
}
