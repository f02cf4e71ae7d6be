// Package zip builds in-memory zip archives for bundled downloads.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
)

// Entry is one file inside the archive.
type Entry struct {
	Name string
	Data []byte
}

// Write streams an archive of the given entries to w. Duplicate names get a
// numeric suffix so every entry survives extraction.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(entries))
	for _, entry := range entries {
		name := entry.Name
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d_%s", n, name)
		}
		seen[entry.Name]++

		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("zip: create entry %s: %w", name, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return fmt.Errorf("zip: write entry %s: %w", name, err)
		}
	}
	return zw.Close()
}
