// Command rowcat writes a line of text into a page.Row and prints the
// result back out, as a small end-to-end exercise of ReplaceCharacters,
// WriteCells and the row's measurement operations.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arvindk/termrow/logger"
	"github.com/arvindk/termrow/size"
	"github.com/arvindk/termrow/terminal/attrtable"
	"github.com/arvindk/termrow/terminal/cellsource"
	"github.com/arvindk/termrow/terminal/page"
)

func main() {
	cols := flag.Int("cols", 80, "row width in columns")
	text := flag.String("text", "", "text to write into the row, may contain \\x1b[...m SGR sequences")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := logger.DefaultLevel
	if *verbose {
		level = logger.DebugLevel
	}
	log := logger.New(logger.Options{Buffer: os.Stderr, Level: level, Type: logger.TypeText})

	if *cols <= 0 {
		fmt.Fprintln(os.Stderr, "rowcat: -cols must be positive")
		os.Exit(1)
	}

	tbl := attrtable.New(attrtable.Options{Logger: log})
	fillAttr, _ := tbl.Get(attrtable.DefaultID)

	width := size.CellCountInt(*cols)
	chars := make([]uint16, width)
	indices := make([]int, width+1)
	row := page.NewRow(chars, indices, width, fillAttr)

	it := cellsource.FromString(*text, tbl)
	if _, err := row.WriteCells(it, 0, nil, nil); err != nil {
		fmt.Fprintln(os.Stderr, "rowcat:", err)
		os.Exit(1)
	}
	log.Debug("wrote row", "width", width, "left", row.MeasureLeft(), "right", row.MeasureRight(),
		"stylesInterned", tbl.Count())

	fmt.Println(row.AsString())
}
