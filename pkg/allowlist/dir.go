package allowlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir treats the entry names of a directory as identifiers, so a directory of
// per-application layer files doubles as the set of known applications.
type Dir struct {
	Path string

	// StripExt drops the last extension from each entry name.
	StripExt bool
}

func NewDir(path string, stripExt bool) *Dir {
	return &Dir{Path: path, StripExt: stripExt}
}

func (d *Dir) Resolve() (Set, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	set := make(Set, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if d.StripExt {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}

	return set, nil
}
