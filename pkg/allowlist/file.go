package allowlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// File reads identifiers from a newline-delimited file. Blank lines and lines
// starting with # are ignored.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Resolve() (Set, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	set := make(Set)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	return set, nil
}
