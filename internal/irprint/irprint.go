// Package irprint renders a lowered instruction sequence as a fixed-width,
// terminal-styled listing, shared by the CLI's plain dump and its
// bubbletea "-watch" viewer.
package irprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

var (
	pcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	opStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	operandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func operand(tbl *symbols.Table, id int) string {
	if id == symbols.NULLID {
		return "-"
	}
	e := tbl.Get(id)
	switch v := e.(type) {
	case *symbols.Variable:
		if v.Name.Bare != "" {
			return fmt.Sprintf("%s#%d", v.Name.Bare, id)
		}
	case *symbols.Label:
		switch {
		case v.Name != "":
			return labelStyle.Render(v.Name)
		case v.LineNumber != 0:
			return labelStyle.Render(strconv.Itoa(v.LineNumber))
		}
	}
	return "#" + strconv.Itoa(id)
}

// Line renders a single instruction as "PC  OPCODE  op1  op2  -> result".
func Line(tbl *symbols.Table, pos int, in *ir.Instruction) string {
	op1, op2, result := "-", "-", "-"
	if tbl != nil {
		op1, op2, result = operand(tbl, in.Op1()), operand(tbl, in.Op2()), operand(tbl, in.Result())
	}
	return fmt.Sprintf("%s  %-16s %-10s %-10s -> %s",
		pcStyle.Render(fmt.Sprintf("%04d", pos)),
		opStyle.Render(in.Op().String()),
		operandStyle.Render(op1),
		operandStyle.Render(op2),
		operandStyle.Render(result),
	)
}

// Listing renders every instruction in seq, one per line, in program order.
func Listing(tbl *symbols.Table, seq *ir.IR) string {
	var b strings.Builder
	for i, in := range seq.All() {
		b.WriteString(Line(tbl, i, in))
		b.WriteByte('\n')
	}
	return b.String()
}
