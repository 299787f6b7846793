// Package source provides the lazy, restartable, position-aware
// character sequence the eyes read from, plus the pluggable file
// resolver used by \input.
package source

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/gnieh/toolxit-tex/position"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// Source is a lazy, pull-based sequence of codepoints with position
// tracking. Next reports ok=false, with a nil error, when exhausted.
// Implementations need not be safe for concurrent use; the
// engine is single-threaded.
type Source interface {
	// Next returns the next rune and its position, or ok=false at end
	// of input. err is non-nil only for genuine I/O failures.
	Next() (r rune, pos position.Position, ok bool, err error)
	// Name reports the source identifier used in positions.
	Name() string
}

// Resolver turns a file name (as requested by \input) into a fresh
// Source, or reports that no such source exists.
type Resolver interface {
	Resolve(name string) (Source, bool, error)
}

// stringSource reads codepoints out of an in-memory string. It backs
// both literal in-memory input and files slurped by a Resolver.
type stringSource struct {
	name string
	data string
	off  int
	pos  position.Position
}

// NewString wraps s as a Source named name.
func NewString(name, s string) Source {
	return &stringSource{name: name, data: s, pos: position.Start(name)}
}

func (s *stringSource) Name() string { return s.name }

func (s *stringSource) Next() (rune, position.Position, bool, error) {
	if s.off >= len(s.data) {
		return 0, s.pos, false, nil
	}
	r, w := utf8.DecodeRuneInString(s.data[s.off:])
	if r == utf8.RuneError && w == 1 {
		return 0, s.pos, false, toolxiterr.Wrap(io.ErrUnexpectedEOF)
	}
	at := s.pos
	s.off += w
	s.pos = position.Advance(s.pos, r)
	return r, at, true, nil
}

// ReaderSource adapts an io.Reader (e.g. an open file) into a Source,
// decoding it as UTF-8 via a buffered reader, matching the eyes'
// assumption that the character source always yields codepoints
// regardless of how the bytes arrived.
type ReaderSource struct {
	name string
	br   *bufio.Reader
	pos  position.Position
	done bool
}

// NewReader wraps r as a Source named name.
func NewReader(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, br: bufio.NewReader(r), pos: position.Start(name)}
}

func (s *ReaderSource) Name() string { return s.name }

func (s *ReaderSource) Next() (rune, position.Position, bool, error) {
	if s.done {
		return 0, s.pos, false, nil
	}
	r, _, err := s.br.ReadRune()
	if err == io.EOF {
		s.done = true
		return 0, s.pos, false, nil
	}
	if err != nil {
		return 0, s.pos, false, toolxiterr.Wrap(err)
	}
	at := s.pos
	s.pos = position.Advance(s.pos, r)
	return r, at, true, nil
}

// DirResolver resolves \input file names against an ordered list of
// directories, trying each directory in turn and falling back to a
// default extension when the requested name has none.
type DirResolver struct {
	Dirs []string
	// Open abstracts file opening so tests can resolve against an
	// in-memory map instead of touching the filesystem.
	Open func(path string) (io.ReadCloser, bool, error)
}

func (d *DirResolver) Resolve(name string) (Source, bool, error) {
	candidates := []string{name}
	hasExt := false
	for _, c := range name {
		if c == '.' {
			hasExt = true
		}
	}
	if !hasExt {
		candidates = append(candidates, name+".tex")
	}
	for _, dir := range d.Dirs {
		for _, cand := range candidates {
			path := cand
			if dir != "" {
				path = dir + "/" + cand
			}
			rc, found, err := d.Open(path)
			if err != nil {
				return nil, false, toolxiterr.Wrap(err)
			}
			if !found {
				continue
			}
			data, err := io.ReadAll(rc)
			closeErr := rc.Close()
			if err != nil {
				return nil, false, toolxiterr.Wrap(err)
			}
			if closeErr != nil {
				return nil, false, toolxiterr.Wrap(closeErr)
			}
			return NewString(path, string(data)), true, nil
		}
	}
	return nil, false, nil
}
