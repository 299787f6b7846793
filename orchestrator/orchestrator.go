// Package orchestrator wires a character source through the eyes and
// the mouth into a single primitive-token stream, the way a small CLI
// wires a file path through a parser and a loader into one consumable
// result.
package orchestrator

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnieh/toolxit-tex/environment"
	"github.com/gnieh/toolxit-tex/eyes"
	"github.com/gnieh/toolxit-tex/mouth"
	"github.com/gnieh/toolxit-tex/source"
	"github.com/gnieh/toolxit-tex/token"
)

// Engine bundles the pipeline for a single run: the scoped environment
// and the mouth reading from it. The \jobname derived from the run's
// name is held by the mouth.
type Engine struct {
	Env   *environment.Environment
	Mouth *mouth.Mouth
}

// osResolver opens \input targets from the filesystem, rooted at the
// directories given to NewFromFile or NewFromString (for a file, its
// own directory plus any -I search directories), following the same ordered-search-path
// idiom as source.DirResolver.
func osResolver(dirs []string) *source.DirResolver {
	return &source.DirResolver{
		Dirs: dirs,
		Open: func(path string) (io.ReadCloser, bool, error) {
			f, err := os.Open(path)
			if os.IsNotExist(err) {
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			return f, true, nil
		},
	}
}

// jobnameFor derives \jobname from a file path the way TeX does: the
// base name with its extension stripped.
func jobnameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewFromFile builds an Engine reading path, resolving \input against
// path's own directory followed by includeDirs, in that order.
func NewFromFile(path string, includeDirs []string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dirs := append([]string{filepath.Dir(path)}, includeDirs...)
	return newEngine(path, string(data), dirs), nil
}

// NewFromString builds an Engine over an in-memory document, named
// name, resolving \input only against includeDirs (no owning
// directory, since there is no backing file).
func NewFromString(name, contents string, includeDirs []string) *Engine {
	return newEngine(name, contents, includeDirs)
}

func newEngine(name, contents string, dirs []string) *Engine {
	env := environment.New(mouth.PrimitiveNames)
	lx := eyes.New(source.NewString(name, contents), env)
	resolver := osResolver(dirs)
	m := mouth.New(env, lx, resolver, jobnameFor(name))
	return &Engine{Env: env, Mouth: m}
}

// Next pulls the next fully expanded primitive token from the
// pipeline, the engine's external interface.
func (e *Engine) Next() (token.Token, bool, error) {
	return e.Mouth.Next(true)
}

// Tokens drains the engine's entire remaining stream, stopping at the
// first error or at end of input. Intended for tests and small
// command-line runs; a long-running consumer should call Next in a
// loop instead of buffering the whole stream.
func (e *Engine) Tokens() ([]token.Token, error) {
	var out []token.Token
	for {
		t, ok, err := e.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, t)
	}
}
