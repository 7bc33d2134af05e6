// Package routeset loads the on-disk route corpus consumed by the
// emulator: a directory of self-contained route descriptors, one JSON
// document per file.
package routeset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/s-klimov/buses-on-the-map/model"
)

const descriptorSuffix = ".json"

// CorpusError wraps a failure reading the route directory or a single
// malformed descriptor within it.
type CorpusError struct {
	Path string
	Err  error
}

func (e *CorpusError) Error() string {
	return fmt.Sprintf("routeset: %s: %v", e.Path, e.Err)
}

func (e *CorpusError) Unwrap() error { return e.Err }

// Loader streams Route values out of a corpus directory one file at a
// time; it never holds more than one descriptor in memory.
type Loader struct {
	dir     string
	entries []os.DirEntry
	pos     int
}

// Open lists the corpus directory (order unspecified) and returns a Loader
// ready to stream its *.json descriptors. It fails with *CorpusError if the
// directory cannot be read.
func Open(dir string) (*Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &CorpusError{Path: dir, Err: err}
	}
	return &Loader{dir: dir, entries: entries}, nil
}

// Next decodes and returns the next route descriptor, skipping files whose
// name does not end in ".json". It returns io.EOF once the directory is
// exhausted. A malformed file yields *CorpusError; the caller may choose to
// skip it and call Next again.
func (l *Loader) Next() (*model.Route, error) {
	for l.pos < len(l.entries) {
		entry := l.entries[l.pos]
		l.pos++
		if entry.IsDir() || filepath.Ext(entry.Name()) != descriptorSuffix {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		route, err := decodeFile(path)
		if err != nil {
			return nil, &CorpusError{Path: path, Err: err}
		}
		return route, nil
	}
	return nil, io.EOF
}

func decodeFile(path string) (*model.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var route model.Route
	if err := json.NewDecoder(f).Decode(&route); err != nil {
		return nil, err
	}
	return &route, nil
}

// LoadAll drains a Loader into a slice, stopping after at most limit routes
// (limit <= 0 means unlimited). A malformed file aborts the whole load; use
// Loader directly to skip bad files instead.
func LoadAll(dir string, limit int) ([]*model.Route, error) {
	loader, err := Open(dir)
	if err != nil {
		return nil, err
	}
	var routes []*model.Route
	for limit <= 0 || len(routes) < limit {
		route, err := loader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}
