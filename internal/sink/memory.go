package sink

import (
	"context"
	"sort"
	"sync"

	"acsgen/internal/acs/assemble"
)

// Memory is an in-process sink for tests. Safe for concurrent writers so
// it can also back a states-in-parallel run.
type Memory struct {
	mu   sync.Mutex
	objs map[string][]byte
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{objs: make(map[string][]byte)}
}

// WriteTable implements Sink.
func (s *Memory) WriteTable(_ context.Context, state string, tbl *assemble.Table) error {
	data, err := encodeTable(tbl)
	if err != nil {
		return errWrite(tableName(state, tbl), err)
	}
	s.put(tableName(state, tbl), data)
	return nil
}

// WriteIndex implements Sink.
func (s *Memory) WriteIndex(_ context.Context, entries []IndexEntry) error {
	data, err := encodeIndex(entries)
	if err != nil {
		return errWrite(indexName, err)
	}
	s.put(indexName, data)
	return nil
}

func (s *Memory) put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[name] = data
}

// Get returns a stored object's bytes.
func (s *Memory) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objs[name]
	return data, ok
}

// Names returns all stored object names, sorted.
func (s *Memory) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objs))
	for name := range s.objs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
