package dbm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cespare/xxhash"

	"github.com/imsgstats/imsgstats/internal/errors"
)

// FingerprintForGroups hashes the size and modification time of every file in the
// requested groups. Missing groups are skipped; when no file exists at all an
// empty string is returned without error.
func (d *DBManager) FingerprintForGroups(names ...string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}

	type fileFingerprint struct {
		group string
		rel   string
		size  int64
		mod   int64
	}

	entries := make([]fileFingerprint, 0)

	for _, name := range names {
		paths, err := d.GetDBPath(name)
		if err != nil {
			if errors.Is(err, errors.ErrDBFileNotFound) {
				continue
			}
			return "", err
		}

		for _, p := range paths {
			info, statErr := os.Stat(p)
			if statErr != nil {
				if os.IsNotExist(statErr) {
					continue
				}
				return "", statErr
			}

			rel := p
			if d.path != "" {
				if relPath, relErr := filepath.Rel(d.path, p); relErr == nil {
					rel = relPath
				}
			}
			rel = filepath.ToSlash(rel)

			entries = append(entries, fileFingerprint{
				group: name,
				rel:   rel,
				size:  info.Size(),
				mod:   info.ModTime().UnixNano(),
			})
		}
	}

	if len(entries) == 0 {
		return "", nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].group == entries[j].group {
			return entries[i].rel < entries[j].rel
		}
		return entries[i].group < entries[j].group
	})

	hasher := xxhash.New()
	for _, e := range entries {
		fmt.Fprintf(hasher, "%s|%s|%d|%d;", e.group, e.rel, e.size, e.mod)
	}

	return strconv.FormatUint(hasher.Sum64(), 16), nil
}
