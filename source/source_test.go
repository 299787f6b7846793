package source

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s Source) string {
	t.Helper()
	var b strings.Builder
	for {
		r, _, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestStringSourceDrainsInOrder(t *testing.T) {
	s := NewString("test", "hello")
	assert.Equal(t, "hello", drain(t, s))
}

func TestStringSourceName(t *testing.T) {
	s := NewString("myfile.tex", "")
	assert.Equal(t, "myfile.tex", s.Name())
}

func TestStringSourceTracksPosition(t *testing.T) {
	s := NewString("test", "ab\ncd")
	_, p1, _, _ := s.Next() // a, line 1 col 1
	assert.Equal(t, 1, p1.Line)
	_, _, _, _ = s.Next() // b
	_, p3, _, _ := s.Next() // newline
	assert.Equal(t, 1, p3.Line)
	_, p4, _, _ := s.Next() // c, line 2
	assert.Equal(t, 2, p4.Line)
}

func TestReaderSourceDrainsInOrder(t *testing.T) {
	s := NewReader("test", strings.NewReader("world"))
	assert.Equal(t, "world", drain(t, s))
}

func TestReaderSourceHandlesEmptyInput(t *testing.T) {
	s := NewReader("test", strings.NewReader(""))
	_, _, ok, err := s.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirResolverSearchesDirsInOrder(t *testing.T) {
	files := map[string]string{
		"/b/found.tex": "content-b",
	}
	r := &DirResolver{
		Dirs: []string{"/a", "/b"},
		Open: func(path string) (io.ReadCloser, bool, error) {
			data, ok := files[path]
			if !ok {
				return nil, false, nil
			}
			return io.NopCloser(strings.NewReader(data)), true, nil
		},
	}
	src, found, err := r.Resolve("found")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "content-b", drain(t, src))
}

func TestDirResolverAppendsTexExtension(t *testing.T) {
	files := map[string]string{
		"/a/chapter1.tex": "chapter one",
	}
	r := &DirResolver{
		Dirs: []string{"/a"},
		Open: func(path string) (io.ReadCloser, bool, error) {
			data, ok := files[path]
			if !ok {
				return nil, false, nil
			}
			return io.NopCloser(strings.NewReader(data)), true, nil
		},
	}
	src, found, err := r.Resolve("chapter1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "chapter one", drain(t, src))
}

func TestDirResolverNotFound(t *testing.T) {
	r := &DirResolver{
		Dirs: []string{"/a"},
		Open: func(path string) (io.ReadCloser, bool, error) {
			return nil, false, nil
		},
	}
	_, found, err := r.Resolve("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDirResolverPropagatesOpenError(t *testing.T) {
	r := &DirResolver{
		Dirs: []string{"/a"},
		Open: func(path string) (io.ReadCloser, bool, error) {
			return nil, false, errors.New("disk error")
		},
	}
	_, _, err := r.Resolve("anything")
	assert.Error(t, err)
}
