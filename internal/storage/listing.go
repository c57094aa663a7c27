package storage

import (
	"errors"
	"io"
)

// Listing iterates once over the names of the root location's direct
// children. Entries are fetched from the backend as the caller advances.
//
//	l, err := s.LoadAll(ctx)
//	if err != nil { ... }
//	defer l.Close()
//	for l.Next() {
//		use(l.Path())
//	}
//	if err := l.Err(); err != nil { ... }
type Listing struct {
	next  func() (string, error) // io.EOF when exhausted
	close func() error

	cur    string
	err    error
	done   bool
	closed bool
}

func newListing(next func() (string, error), close func() error) *Listing {
	return &Listing{next: next, close: close}
}

// Next advances to the next entry. It returns false when the listing is
// exhausted, failed or closed; it never restarts.
func (l *Listing) Next() bool {
	if l.done || l.closed {
		return false
	}
	name, err := l.next()
	if err != nil {
		l.done = true
		l.cur = ""
		if !errors.Is(err, io.EOF) {
			l.err = err
		}
		return false
	}
	l.cur = name
	return true
}

// Path returns the current entry relative to the root location.
func (l *Listing) Path() string { return l.cur }

// Err returns the error that stopped iteration, if any.
func (l *Listing) Err() error { return l.err }

// Close releases the underlying directory handle. It is safe to call twice.
func (l *Listing) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.close == nil {
		return nil
	}
	return l.close()
}

// Collect drains l into a slice and closes it.
func Collect(l *Listing) ([]string, error) {
	defer l.Close()

	out := make([]string, 0)
	for l.Next() {
		out = append(out, l.Path())
	}
	return out, l.Err()
}
