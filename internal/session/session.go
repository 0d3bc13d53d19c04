// Package session persists per-file editing state (cursor, scroll,
// search query) across runs in a single JSON document, so reopening a
// file restores where the user left off.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State is everything remembered about one file.
type State struct {
	Line          int
	Col           int
	ScrollOffset  float64
	SearchQuery   string
	CaseSensitive bool
}

// Store holds the session document and writes it back on Save. The
// document is updated in place, so state for files not touched in this
// run is preserved verbatim.
type Store struct {
	path string
	doc  []byte
}

// Open loads the session file at path. A missing file yields an empty
// store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: []byte("{}")}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		// A corrupt session is not worth failing startup over.
		return s, nil
	}
	s.doc = data
	return s, nil
}

// Get returns the remembered state for a file. Missing entries yield the
// zero State.
func (s *Store) Get(file string) State {
	base := "files." + escapeKey(file)
	return State{
		Line:          int(gjson.GetBytes(s.doc, base+".line").Int()),
		Col:           int(gjson.GetBytes(s.doc, base+".col").Int()),
		ScrollOffset:  gjson.GetBytes(s.doc, base+".scroll").Float(),
		SearchQuery:   gjson.GetBytes(s.doc, base+".query").String(),
		CaseSensitive: gjson.GetBytes(s.doc, base+".case_sensitive").Bool(),
	}
}

// Has reports whether the store remembers anything about a file.
func (s *Store) Has(file string) bool {
	return gjson.GetBytes(s.doc, "files."+escapeKey(file)).Exists()
}

// Put records the state for a file.
func (s *Store) Put(file string, st State) error {
	base := "files." + escapeKey(file)
	var err error
	doc := s.doc
	for _, kv := range []struct {
		key string
		val any
	}{
		{".line", st.Line},
		{".col", st.Col},
		{".scroll", st.ScrollOffset},
		{".query", st.SearchQuery},
		{".case_sensitive", st.CaseSensitive},
	} {
		doc, err = sjson.SetBytes(doc, base+kv.key, kv.val)
		if err != nil {
			return fmt.Errorf("updating session for %s: %w", file, err)
		}
	}
	s.doc = doc
	return nil
}

// Forget drops the remembered state for a file.
func (s *Store) Forget(file string) error {
	doc, err := sjson.DeleteBytes(s.doc, "files."+escapeKey(file))
	if err != nil {
		return fmt.Errorf("removing session for %s: %w", file, err)
	}
	s.doc = doc
	return nil
}

// Files returns all remembered file paths.
func (s *Store) Files() []string {
	var out []string
	gjson.GetBytes(s.doc, "files").ForEach(func(key, _ gjson.Result) bool {
		out = append(out, key.String())
		return true
	})
	return out
}

// Save writes the session document back to disk.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(s.path, s.doc, 0o644); err != nil {
		return fmt.Errorf("writing session file %s: %w", s.path, err)
	}
	return nil
}

// DefaultPath returns the per-user session file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quill-session.json"
	}
	return filepath.Join(dir, "quill", "session.json")
}

// escapeKey makes a file path usable as a single JSON-path key segment.
func escapeKey(file string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`.`, `\.`,
		`*`, `\*`,
		`?`, `\?`,
		`|`, `\|`,
		`#`, `\#`,
		`@`, `\@`,
	)
	return r.Replace(file)
}
