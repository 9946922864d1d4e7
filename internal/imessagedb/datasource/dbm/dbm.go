package dbm

import (
	"path/filepath"
	"sort"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/pkg/util"
)

const (
	Message = "message"
	Contact = "contact"
	Clean   = "clean"
)

// DBManager resolves named groups of source files. Each group is a list of
// paths or glob patterns; AddressBook keeps one database per account source.
type DBManager struct {
	path   string
	groups map[string][]string
}

// NewDBManager returns a manager reporting paths relative to base when possible.
func NewDBManager(base string) *DBManager {
	return &DBManager{path: base, groups: make(map[string][]string)}
}

func (d *DBManager) AddGroup(name string, patterns ...string) {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		d.groups[name] = append(d.groups[name], util.ExpandHome(p))
	}
}

// GetDBPath returns the sorted files of a group, or ErrDBFileNotFound when none exist.
func (d *DBManager) GetDBPath(name string) ([]string, error) {
	seen := make(map[string]bool)
	paths := make([]string, 0)
	for _, pattern := range d.groups[name] {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.InvalidArg(pattern)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, errors.DBFileNotFound(name)
	}
	sort.Strings(paths)
	return paths, nil
}
