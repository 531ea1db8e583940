// Package prefs persists the manual overlay level across restarts.
package prefs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"motion-overlay/src/opacity"
)

const fileName = "state.toml"

type state struct {
	ManualLevel int `toml:"manual_level"`
}

// Store keeps the manual level in <dir>/state.toml.
type Store struct {
	path string

	mu    sync.Mutex
	level int
}

// Open reads the stored level, falling back to the default when the file is
// missing or unreadable. Stored values are clamped to [0,100].
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("prefs: empty state directory")
	}
	s := &Store{path: filepath.Join(dir, fileName), level: opacity.DefaultLevel}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return s, nil
	}
	st := state{ManualLevel: opacity.DefaultLevel}
	if _, err := toml.DecodeFile(s.path, &st); err != nil {
		log.Printf("prefs: ignoring unreadable %s: %v", s.path, err)
		return s, nil
	}
	s.level = opacity.ClampLevel(st.ManualLevel)
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Level returns the last stored level.
func (s *Store) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SaveLevel clamps and writes the level. The file is replaced atomically.
func (s *Store) SaveLevel(level int) error {
	level = opacity.ClampLevel(level)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(state{ManualLevel: level}); err != nil {
		return err
	}
	s.level = level
	return nil
}

func (s *Store) write(st state) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("prefs: create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("prefs: temp file: %w", err)
	}
	tmp := f.Name()
	if err := toml.NewEncoder(f).Encode(st); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("prefs: close: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("prefs: replace %s: %w", s.path, err)
	}
	return nil
}
