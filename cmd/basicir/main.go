// Command basicir compiles a BASIC source file down to its lowered IR
// listing, either dumping it once to stdout or watching the file and
// re-rendering the listing in a scrollable terminal viewer on every save.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/basicir/internal/irprint"
	"github.com/gosuda/basicir/lower"
	"github.com/gosuda/basicir/parser"
)

func main() {
	watch := flag.Bool("watch", false, "open a scrollable terminal viewer that re-lowers the file on every change")
	graphics := flag.Bool("graphics", false, "enable console/graphics/sound statement lowering")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: basicir [-watch] [-graphics] <file.bas>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *watch {
		p := tea.NewProgram(newModel(path, *graphics), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "basicir: %v\n", err)
			os.Exit(1)
		}
		return
	}

	listing, err := compile(path, *graphics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "basicir: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(listing)
}

// compile reads, parses, and lowers path, returning its IR listing.
func compile(path string, graphics bool) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	prog, err := parser.Parse(string(src))
	if err != nil {
		return "", err
	}
	l := lower.New(graphics)
	if err := l.Lower(prog); err != nil {
		return "", err
	}
	return irprint.Listing(l.Symbols(), l.IR()), nil
}
