package render

import (
	"strconv"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// tableColumns returns the column count of a table: the columns attribute,
// or the widest row counting column spans.
func tableColumns(n *doctree.Node) int {
	if cols := n.Int(doctree.AttrColumns); cols > 0 {
		return cols
	}
	widest := 0
	for _, row := range n.Children {
		width := 0
		for _, entry := range row.Children {
			width += 1 + entry.Int(doctree.AttrMoreCols)
		}
		if width > widest {
			widest = width
		}
	}
	return widest
}

func latexEnterTable(c *Context, n *doctree.Node) error {
	cols := tableColumns(n)
	c.Table = &TableState{Columns: cols}
	c.RememberMultirow = make(map[int]int)
	c.PreviousSpanningRow = 0
	c.PreviousSpanningColumn = 0

	c.Emit("\n")
	addPending(&c.NextTableIDs, n.IDs...)
	for _, id := range takeIDs(&c.NextTableIDs) {
		c.Emit(latexHypertarget(c, id))
	}
	c.Emit(`\begin{tabulary}{\linewidth}{|` + strings.Repeat("L|", cols) + "}\n\\hline\n")
	return nil
}

func latexExitTable(c *Context, _ *doctree.Node) error {
	c.Emit("\\end{tabulary}\n")
	c.Table = nil
	c.RememberMultirow = nil
	c.PreviousSpanningRow = 0
	c.PreviousSpanningColumn = 0
	return nil
}

func latexEnterRow(c *Context, n *doctree.Node) error {
	c.Table.Col = 0
	c.Table.Header = n.Bool(doctree.AttrHeader)
	c.PreviousSpanningRow = 0
	c.PreviousSpanningColumn = 0
	return nil
}

// latexExitRow fills covered and missing cells, ends the row and draws the
// rule below it. Columns still spanned by a multirow cell get no rule.
func latexExitRow(c *Context, _ *doctree.Node) error {
	t := c.Table
	for t.Col < t.Columns {
		if c.RememberMultirow[t.Col+1] > 0 {
			c.RememberMultirow[t.Col+1]--
			c.PreviousSpanningRow++
		}
		emptyCell(c)
	}
	c.Emit(" \\\\\n")
	t.Rows++

	spanning := false
	for _, rows := range c.RememberMultirow {
		if rows > 0 {
			spanning = true
			break
		}
	}
	if !spanning {
		c.Emit("\\hline\n")
		return nil
	}
	start := 0
	for col := 1; col <= t.Columns+1; col++ {
		open := col <= t.Columns && c.RememberMultirow[col] == 0
		switch {
		case open && start == 0:
			start = col
		case !open && start != 0:
			c.Emit(`\cline{` + strconv.Itoa(start) + "-" + strconv.Itoa(col-1) + "}")
			start = 0
		}
	}
	c.Emit("\n")
	return nil
}

// skipCoveredColumns renders an empty cell for every column at the current
// position that is still covered by a multirow cell from a row above.
func skipCoveredColumns(c *Context) {
	for c.Table.Col < c.Table.Columns && c.RememberMultirow[c.Table.Col+1] > 0 {
		c.RememberMultirow[c.Table.Col+1]--
		c.PreviousSpanningRow++
		emptyCell(c)
	}
}

// emptyCell advances one column without content.
func emptyCell(c *Context) {
	if c.Table.Col > 0 {
		c.Emit(" & ")
	}
	c.Table.Col++
}

// latexEnterEntry opens a cell, wrapping it in \multicolumn and \multirow
// for spans.
func latexEnterEntry(c *Context, n *doctree.Node) error {
	t := c.Table
	skipCoveredColumns(c)
	if t.Col > 0 {
		c.Emit(" & ")
	}
	first := t.Col + 1

	var closer strings.Builder
	if cols := n.Int(doctree.AttrMoreCols); cols > 0 {
		spec := "l|"
		if first == 1 {
			spec = "|l|"
		}
		c.Emit(`\multicolumn{` + strconv.Itoa(cols+1) + "}{" + spec + "}{")
		closer.WriteString("}")
		c.PreviousSpanningColumn += cols
		t.Col += cols
	}
	if rows := n.Int(doctree.AttrMoreRows); rows > 0 {
		c.Emit(`\multirow{` + strconv.Itoa(rows+1) + "}{*}{")
		closer.WriteString("}")
		for col := first; col <= t.Col+1; col++ {
			c.RememberMultirow[col] = rows
		}
	}
	t.Col++
	if t.Header || n.Bool(doctree.AttrHeader) {
		c.Emit(`\textbf{`)
		closer.WriteString("}")
	}
	c.PushCloser(closer.String())
	return nil
}
