package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"acsgen/internal/acs/assemble"
)

// Filesystem writes CSVs under a root directory. Writes go through a temp
// file and an atomic rename so a crashed run never leaves a truncated
// table behind.
type Filesystem struct {
	root string
}

// NewFilesystem returns a filesystem sink rooted at dir, creating it if
// needed.
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		return nil, fmt.Errorf("filesystem sink: output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Filesystem{root: dir}, nil
}

// WriteTable implements Sink.
func (s *Filesystem) WriteTable(_ context.Context, state string, tbl *assemble.Table) error {
	name := tableName(state, tbl)
	data, err := encodeTable(tbl)
	if err != nil {
		return errWrite(name, err)
	}
	if err := s.writeAtomic(name, data); err != nil {
		return errWrite(name, err)
	}
	return nil
}

// WriteIndex implements Sink.
func (s *Filesystem) WriteIndex(_ context.Context, entries []IndexEntry) error {
	data, err := encodeIndex(entries)
	if err != nil {
		return errWrite(indexName, err)
	}
	if err := s.writeAtomic(indexName, data); err != nil {
		return errWrite(indexName, err)
	}
	return nil
}

// writeAtomic stages data in a temp file in the target directory and moves
// it into place.
func (s *Filesystem) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.root, name))
}
