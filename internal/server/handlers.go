// Package server provides a local preview server for generated visualizations.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const etagCap = 64

// HandleList serves the JSON list of available visualizations.
func (s *ServerContext) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Visualizations)
}

// HandleIndex serves a minimal listing page linking to each visualization.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.HandleArtifact(w, r)
		return
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"/>")
	b.WriteString("<title>Visualizations</title></head><body><h1>Visualizations</h1><ul>")
	for _, v := range s.Visualizations {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>", "/"+v.File, v.Name)
	}
	b.WriteString("</ul></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// HandleArtifact serves a generated HTML page or its companion GeoJSON file.
func (s *ServerContext) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(r.URL.Path, "/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	var contentType string
	switch {
	case strings.HasSuffix(name, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".geojson"):
		contentType = "application/geo+json"
	case strings.HasSuffix(name, ".json"):
		contentType = "application/json"
	default:
		http.NotFound(w, r)
		return
	}

	path, ok := s.resolve(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, path, contentType) {
		http.NotFound(w, r)
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
