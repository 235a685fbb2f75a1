// Package archive locates the members of a per-state summary file archive:
// the single geography CSV and the estimate/margin file pair for each
// sequence.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// SourceUnavailableError reports an expected archive member that is absent.
// A missing geography file aborts the state; a missing estimate or margin
// file aborts only the table whose sequence needed it.
type SourceUnavailableError struct {
	State  string
	Member string
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("state %s: archive member %s not found", e.State, e.Member)
}

// Archive indexes one state's summary file ZIP. Members are not read until
// requested.
type Archive struct {
	state     string
	zr        *zip.Reader
	closer    io.Closer
	geoFile   *zip.File
	estimates map[string]*zip.File
	margins   map[string]*zip.File
}

// New scans the archive's member list. The geography CSV is the member
// whose name starts with "g" and ends with ".csv"; estimate and margin
// members start with "e" and "m" and carry their sequence id in filename
// characters 9-12.
func New(state string, zr *zip.Reader) (*Archive, error) {
	a := &Archive{
		state:     state,
		zr:        zr,
		estimates: make(map[string]*zip.File),
		margins:   make(map[string]*zip.File),
	}

	for _, f := range zr.File {
		name := f.Name
		switch {
		case strings.HasPrefix(name, "g") && strings.HasSuffix(name, ".csv"):
			if a.geoFile == nil {
				a.geoFile = f
			}
		case strings.HasPrefix(name, "e") && len(name) >= 12:
			a.estimates[name[8:12]] = f
		case strings.HasPrefix(name, "m") && len(name) >= 12:
			a.margins[name[8:12]] = f
		}
	}

	if a.geoFile == nil {
		return nil, &SourceUnavailableError{State: state, Member: "g*.csv"}
	}

	return a, nil
}

// OpenFile opens a state archive from disk. Close releases the underlying
// file handle.
func OpenFile(state, path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive for %s: %w", state, err)
	}
	a, err := New(state, &rc.Reader)
	if err != nil {
		rc.Close()
		return nil, err
	}
	a.closer = rc
	return a, nil
}

// Close releases resources held by OpenFile. It is a no-op for archives
// built over an external zip.Reader.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// State returns the state name this archive belongs to.
func (a *Archive) State() string {
	return a.state
}

// Geography opens the state's geography CSV.
func (a *Archive) Geography() (io.ReadCloser, error) {
	return a.geoFile.Open()
}

// Estimates opens the estimate file for a 4-digit sequence id.
func (a *Archive) Estimates(seq string) (io.ReadCloser, error) {
	f, ok := a.estimates[seq]
	if !ok {
		return nil, &SourceUnavailableError{State: a.state, Member: "e*" + seq}
	}
	return f.Open()
}

// Margins opens the margin-of-error file for a 4-digit sequence id.
func (a *Archive) Margins(seq string) (io.ReadCloser, error) {
	f, ok := a.margins[seq]
	if !ok {
		return nil, &SourceUnavailableError{State: a.state, Member: "m*" + seq}
	}
	return f.Open()
}
