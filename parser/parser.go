// Package parser implements a hand-rolled recursive-descent front end that
// turns BASIC source text into an *ast.Program. It exists so the lowering
// pass has something concrete and testable to walk; it is not a general
// grammar engine and does not aim for full dialect coverage.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosuda/basicir/ast"
)

var lineNumberRe = regexp.MustCompile(`^(\d+)\s*(.*)$`)
var labelRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):\s*(.*)$`)

type sourceLine struct {
	number   int
	label    string
	segments []string
	lineIdx  int
}

// Parser turns normalized BASIC source text into an *ast.Program.
type Parser struct {
	lines []sourceLine
	li    int
}

// Parse is the front end's entry point.
func Parse(src string) (*ast.Program, error) {
	lines, err := splitSourceLines(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{lines: lines}
	prog := &ast.Program{}
	for p.li < len(p.lines) {
		line, err := p.parseTopLine()
		if err != nil {
			return nil, err
		}
		prog.Lines = append(prog.Lines, line)
	}
	return prog, nil
}

func splitSourceLines(src string) ([]sourceLine, error) {
	raw := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var out []sourceLine
	for i, text := range raw {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		number := 0
		label := ""
		rest := trimmed
		if m := lineNumberRe.FindStringSubmatch(trimmed); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed line number %q", i+1, m[1])
			}
			number = n
			rest = m[2]
		} else if m := labelRe.FindStringSubmatch(trimmed); m != nil {
			label = m[1]
			rest = m[2]
		}
		segs := splitTopLevel(rest, ':')
		var segments []string
		for _, s := range segs {
			s = strings.TrimSpace(s)
			if s != "" {
				segments = append(segments, s)
			}
		}
		out = append(out, sourceLine{number: number, label: label, segments: segments, lineIdx: i + 1})
	}
	return out, nil
}

func (p *Parser) cur() sourceLine {
	return p.lines[p.li]
}

func (p *Parser) done() bool {
	return p.li >= len(p.lines)
}

// parseTopLine consumes the current source line and, for statements that
// open a multi-line body (WHILE, FOR, IF...THEN BEGIN), consumes
// however many further source lines make up that body.
func (p *Parser) parseTopLine() (*ast.Line, error) {
	sl := p.cur()
	pos := ast.Pos{Line: sl.lineIdx}
	line := &ast.Line{Number: sl.number, Label: sl.label, Pos: pos}
	p.li++
	for _, seg := range sl.segments {
		stmt, err := p.parseSegment(seg, sl.lineIdx)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			line.Statements = append(line.Statements, stmt)
		}
	}
	return line, nil
}

// parseSegment parses one colon-delimited statement. Block statements
// (WHILE/FOR/IF...BEGIN) recursively pull further source lines
// through p.li; simple statements only consume seg's own tokens.
func (p *Parser) parseSegment(seg string, lineIdx int) (ast.Statement, error) {
	toks, err := lexLine(seg)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineIdx, err)
	}
	if len(toks) == 0 || toks[0].kind == tokEOF {
		return nil, nil
	}
	// Statement parsers see only the segment's own tokens, without the
	// lexer's closing EOF marker.
	if toks[len(toks)-1].kind == tokEOF {
		toks = toks[:len(toks)-1]
	}
	return p.parseStatement(toks, lineIdx)
}
