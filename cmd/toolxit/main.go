// Command toolxit drives the eyes/mouth pipeline over a single TeX
// source file and prints its primitive token stream.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/alecthomas/repr"

	"github.com/gnieh/toolxit-tex/orchestrator"
	"github.com/gnieh/toolxit-tex/token"
	"github.com/gnieh/toolxit-tex/toolxiterr"
)

// includeDirs collects repeated -I flags into an ordered search path.
type includeDirs []string

func (d *includeDirs) String() string { return strings.Join(*d, ",") }

func (d *includeDirs) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	log.SetFlags(0)

	file := flag.String("file", "", "Path to the TeX source file to run")
	useRepr := flag.Bool("repr", false, "Dump tokens with github.com/alecthomas/repr instead of their short rendering")
	stopOnError := flag.Bool("stop-on-error", false, "Stop at the first error instead of reporting it and continuing to end of input")
	var dirs includeDirs
	flag.Var(&dirs, "I", "Additional \\input search directory (repeatable)")
	flag.Parse()

	if *file == "" {
		log.Fatal("Error: -file flag is required")
	}

	engine, err := orchestrator.NewFromFile(*file, []string(dirs))
	if err != nil {
		log.Fatalf("Error: cannot read %s: %v", *file, err)
	}

	run(engine, *useRepr, *stopOnError)
}

func run(engine *orchestrator.Engine, useRepr, stopOnError bool) {
	defer func() {
		if r := recover(); r != nil {
			if bugErr, ok := r.(*toolxiterr.Error); ok {
				log.Fatalf("internal error: %v", bugErr)
			}
			panic(r)
		}
	}()

	count := 0
	for {
		tok, ok, err := engine.Next()
		if err != nil {
			log.Printf("error: %v", err)
			if stopOnError {
				return
			}
			continue
		}
		if !ok {
			break
		}
		fmt.Println(render(tok, useRepr))
		count++
	}
	log.Printf("%d tokens", count)
}

func render(t token.Token, useRepr bool) string {
	if useRepr {
		return repr.String(t, repr.Indent(""))
	}
	return fmt.Sprintf("%s: %s", t.Pos, t.String())
}
