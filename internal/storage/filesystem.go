package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	tempPrefix = ".upload-"
	tempSuffix = ".tmp"

	// listBatch is how many directory entries LoadAll reads per syscall.
	listBatch = 64
)

// FileSystemStorage implements Storage on a directory of an afero filesystem.
// Production uses afero.NewOsFs; tests use an in-memory filesystem.
type FileSystemStorage struct {
	fs   afero.Fs
	root string
}

// NewFileSystemStorage returns a storage rooted at location. The location is
// made absolute once; it is not created until Init.
func NewFileSystemStorage(fs afero.Fs, location string) (*FileSystemStorage, error) {
	if strings.TrimSpace(location) == "" {
		return nil, &Error{Op: "open", Err: errors.New("file upload location can not be empty")}
	}

	root, err := filepath.Abs(location)
	if err != nil {
		return nil, &Error{Op: "open", Name: location, Err: err}
	}

	return &FileSystemStorage{fs: fs, root: root}, nil
}

// Root returns the absolute root location.
func (s *FileSystemStorage) Root() string {
	return s.root
}

// Init creates the root location and any missing parents.
func (s *FileSystemStorage) Init(_ context.Context) error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return &Error{Op: "init", Name: s.root, Err: fmt.Errorf("could not initialize storage: %w", err)}
	}
	return nil
}

// Store writes content to a temp file in the root location and renames it
// over the destination, so a failed copy never leaves a partial file behind.
func (s *FileSystemStorage) Store(_ context.Context, name string, content io.Reader) error {
	body, _, err := nonEmpty(content, 1)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}
	if strings.TrimSpace(name) == "" {
		return &Error{Op: "store", Name: name, Err: ErrEmptyFilename}
	}

	dest, err := containedPath(s.root, name)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}
	if isTempName(filepath.Base(dest)) {
		return &Error{Op: "store", Name: name, Err: ErrReservedName}
	}

	tmp := filepath.Join(s.root, tempPrefix+uuid.NewString()+tempSuffix)
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &Error{Op: "store", Name: name, Err: err}
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return &Error{Op: "store", Name: name, Err: fmt.Errorf("copy content: %w", err)}
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return &Error{Op: "store", Name: name, Err: err}
	}
	if err := s.fs.Rename(tmp, dest); err != nil {
		_ = s.fs.Remove(tmp)
		return &Error{Op: "store", Name: name, Err: err}
	}
	return nil
}

// LoadAll opens the root location and reads its entries lazily.
// In-flight uploads are skipped.
func (s *FileSystemStorage) LoadAll(_ context.Context) (*Listing, error) {
	dir, err := s.fs.Open(s.root)
	if err != nil {
		return nil, &Error{Op: "list", Name: s.root, Err: fmt.Errorf("failed to read stored files: %w", err)}
	}

	var pending []string
	next := func() (string, error) {
		for {
			for len(pending) > 0 {
				name := pending[0]
				pending = pending[1:]
				if isTempName(name) {
					continue
				}
				return name, nil
			}

			names, err := dir.Readdirnames(listBatch)
			if len(names) == 0 {
				if err == nil {
					err = io.EOF
				}
				return "", err
			}
			pending = names
		}
	}

	return newListing(next, dir.Close), nil
}

// Resolve joins the root location and name.
func (s *FileSystemStorage) Resolve(name string) string {
	return filepath.Join(s.root, name)
}

// LoadAsResource returns the regular file at Resolve(name).
func (s *FileSystemStorage) LoadAsResource(_ context.Context, name string) (*Resource, error) {
	p := s.Resolve(name)

	info, err := s.fs.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, notFound(name)
	}

	return &Resource{
		Filename: filepath.Base(p),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		open: func() (io.ReadSeekCloser, error) {
			f, err := s.fs.Open(p)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil, notFound(name)
				}
				return nil, err
			}
			return f, nil
		},
	}, nil
}

// DeleteAll removes the root location recursively. A missing root is not an error.
func (s *FileSystemStorage) DeleteAll(_ context.Context) error {
	if err := s.fs.RemoveAll(s.root); err != nil {
		return &Error{Op: "delete", Name: s.root, Err: err}
	}
	return nil
}

// containedPath returns the absolute destination for name under root, or
// ErrPathEscape when the cleaned path is not a direct child of root.
func containedPath(root, name string) (string, error) {
	dest, err := filepath.Abs(filepath.Join(root, name))
	if err != nil {
		return "", err
	}
	if dest == root || filepath.Dir(dest) != root {
		return "", ErrPathEscape
	}
	return dest, nil
}

// nonEmpty peeks up to n bytes of content. It returns a reader that still
// yields every byte, the peeked head, and ErrEmptyFile when there is nothing to read.
func nonEmpty(content io.Reader, n int) (io.Reader, []byte, error) {
	br := bufio.NewReaderSize(content, max(n, 16))
	head, err := br.Peek(n)
	if len(head) == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyFile
		}
		return nil, nil, err
	}
	return br, head, nil
}

// IsBaseName reports whether name is a single path element, i.e. a name that
// Store places directly under the root without any normalization.
func IsBaseName(name string) bool {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name
}

// isTempName matches the exact ".upload-<uuid>.tmp" shape Store writes to.
func isTempName(name string) bool {
	if !strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, tempSuffix) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, tempPrefix), tempSuffix)
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
