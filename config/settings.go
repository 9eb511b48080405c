// Package config loads and live-reloads per-module settings files — a
// plain reflected-struct dump named by the user (spec.md §6, e.g.
// "Default.config") stored under project/Configuration/Modules/<library>/.
// Grounded on prysmaticlabs-prysm's use of gopkg.in/yaml.v2 for config
// round-tripping and github.com/fsnotify/fsnotify for live reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v2"
)

// IOFailureError wraps an underlying filesystem/parse error with the path
// that failed, mirroring ecs.IOFailureError's shape for the settings layer.
type IOFailureError struct {
	Path string
	Err  error
}

func (e *IOFailureError) Error() string { return fmt.Sprintf("config: io failure for %s: %v", e.Path, e.Err) }
func (e *IOFailureError) Unwrap() error { return e.Err }

// Path builds the on-disk path for a module's named settings file, per
// spec.md §6: project/Configuration/Modules/<library>/<name>.config.
func Path(projectRoot, library, name string) string {
	return filepath.Join(projectRoot, "Configuration", "Modules", library, name+".config")
}

// Settings is one loaded reflected-struct dump. Fields are kept as a plain
// map rather than bound to a concrete Go struct so one Settings value can
// back any module's configuration shape; callers that want typed access
// decode a sub-tree themselves with yaml.Marshal+Unmarshal through Raw.
type Settings struct {
	Path string

	mu      sync.RWMutex
	data    map[string]any
	modTime time.Time
}

// Load reads and parses path. The file must already exist.
func Load(path string) (*Settings, error) {
	s := &Settings{Path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// New creates an empty, unsaved Settings bound to path — used when a
// module is bound for the first time and has no settings file yet.
func New(path string) *Settings {
	return &Settings{Path: path, data: make(map[string]any)}
}

func (s *Settings) reload() error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	data := make(map[string]any)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	s.mu.Lock()
	s.data = data
	s.modTime = info.ModTime()
	s.mu.Unlock()
	return nil
}

// Save writes the current in-memory values back to Path, creating parent
// directories as needed.
func (s *Settings) Save() error {
	s.mu.RLock()
	raw, err := yaml.Marshal(s.data)
	s.mu.RUnlock()
	if err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	if err := os.WriteFile(s.Path, raw, 0o644); err != nil {
		return &IOFailureError{Path: s.Path, Err: err}
	}
	return nil
}

// Get reads one key. The bool is false if the key is unset — the caller is
// expected to fall back to the field's Go zero value or a module-declared
// default, per spec.md §4.6's "invoking the default-initialisation paths
// for any fields that went missing".
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set writes one key.
func (s *Settings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]any)
	}
	s.data[key] = value
}

// Raw returns a copy of every key/value currently loaded, for callers that
// want to decode the whole blob into a typed struct themselves.
func (s *Settings) Raw() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Changed reports whether the on-disk file's mtime has advanced past the
// last successful load — the poll-based fallback half of live reload
// (original_source/Editor/src/Modules/ModuleSettings.cpp compares
// std::filesystem::last_write_time the same way).
func (s *Settings) Changed() (bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return false, &IOFailureError{Path: s.Path, Err: err}
	}
	s.mu.RLock()
	prev := s.modTime
	s.mu.RUnlock()
	return info.ModTime().After(prev), nil
}

// ReloadIfChanged reloads the file if ModTime advanced, reporting whether
// it did.
func (s *Settings) ReloadIfChanged() (bool, error) {
	changed, err := s.Changed()
	if err != nil || !changed {
		return changed, err
	}
	return true, s.reload()
}
