// Package input gives uniform access to the files of a GTFS feed stored
// as a directory, a zip archive or an in-memory map.
package input

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/mmap"
)

// Input is a set of named files.
type Input interface {
	// Filenames lists the files at the feed root, sorted.
	Filenames() []string
	// Open opens one file. The caller closes it.
	Open(name string) (io.ReadCloser, error)
	Close() error
}

// Open opens a directory or a .zip archive.
func Open(location string) (Input, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot access feed").
			WithDetail("location", location)
	}
	if info.IsDir() {
		d, err := NewDirectory(location)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	z, err := NewZip(location)
	if err != nil {
		return nil, err
	}
	return z, nil
}

// Directory reads feed files from a directory.
type Directory struct {
	root  string
	files []string
}

// NewDirectory lists the regular files of root.
func NewDirectory(root string) (*Directory, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot list feed directory").
			WithDetail("location", root)
	}
	d := &Directory{root: root}
	for _, e := range entries {
		if e.Type().IsRegular() {
			d.files = append(d.files, e.Name())
		}
	}
	sort.Strings(d.files)
	return d, nil
}

func (d *Directory) Filenames() []string { return append([]string(nil), d.files...) }

func (d *Directory) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.Base(name)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot open feed file").
			WithDetail("filename", name)
	}
	return f, nil
}

func (d *Directory) Close() error { return nil }

// Zip reads feed files from a zip archive. Files nested in a single
// top-level folder are treated as if they were at the root.
type Zip struct {
	backing io.Closer
	files   map[string]*zip.File
	names   []string
}

// NewZip opens the archive at location. The archive is memory-mapped when
// the platform allows it and read through the file otherwise.
func NewZip(location string) (*Zip, error) {
	var (
		ra      io.ReaderAt
		size    int64
		backing io.Closer
	)
	if m, err := mmap.NewReader(location); err == nil {
		ra, size, backing = m, m.Size(), m
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot open feed archive").
				WithDetail("location", location)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot stat feed archive").
				WithDetail("location", location)
		}
		ra, size, backing = f, info.Size(), f
	}

	z, err := newZip(ra, size)
	if err != nil {
		backing.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "invalid feed archive").
			WithDetail("location", location)
	}
	z.backing = backing
	return z, nil
}

// NewZipFromBytes reads an archive held in memory.
func NewZipFromBytes(data []byte) (*Zip, error) {
	z, err := newZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "invalid feed archive")
	}
	return z, nil
}

func newZip(ra io.ReaderAt, size int64) (*Zip, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, err
	}

	var regular []*zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		regular = append(regular, f)
	}
	prefix := commonFolder(regular)

	z := &Zip{files: make(map[string]*zip.File, len(regular))}
	for _, f := range regular {
		name := strings.TrimPrefix(f.Name, prefix)
		if strings.Contains(name, "/") {
			continue
		}
		if _, dup := z.files[name]; dup {
			continue
		}
		z.files[name] = f
		z.names = append(z.names, name)
	}
	sort.Strings(z.names)
	return z, nil
}

// commonFolder returns "dir/" when every file sits in the same single
// top-level folder.
func commonFolder(files []*zip.File) string {
	if len(files) == 0 {
		return ""
	}
	dir := path.Dir(files[0].Name)
	if dir == "." || strings.Contains(dir, "/") {
		return ""
	}
	for _, f := range files[1:] {
		if path.Dir(f.Name) != dir {
			return ""
		}
	}
	return dir + "/"
}

func (z *Zip) Filenames() []string { return append([]string(nil), z.names...) }

func (z *Zip) Open(name string) (io.ReadCloser, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, errors.New(errors.ErrorTypeNotFound, "no such file in archive").
			WithDetail("filename", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, "cannot open archive entry").
			WithDetail("filename", name)
	}
	return rc, nil
}

func (z *Zip) Close() error {
	if z.backing == nil {
		return nil
	}
	return z.backing.Close()
}

// Memory is an in-memory feed.
type Memory struct {
	files map[string]string
}

// NewMemory creates an input from filename to content.
func NewMemory(files map[string]string) *Memory {
	return &Memory{files: files}
}

func (m *Memory) Filenames() []string {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Memory) Open(name string) (io.ReadCloser, error) {
	content, ok := m.files[name]
	if !ok {
		return nil, errors.New(errors.ErrorTypeNotFound, "no such file").WithDetail("filename", name)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *Memory) Close() error { return nil }
