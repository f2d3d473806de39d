package parser

import (
	"fmt"
	"strings"

	"github.com/gosuda/basicir/ast"
)

func indexOfKeyword(toks []token, kw string) int {
	depth := 0
	for i, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		default:
			if depth == 0 && t.kind == tokKeyword && t.lit == kw {
				return i
			}
		}
	}
	return -1
}

// firstSegmentTokens lexes the first colon-delimited segment of the
// current source line, used to peek whether a line is a bare block
// terminator (WEND, NEXT, END IF, ELSE/ELSE BEGIN).
func (p *Parser) firstSegmentTokens() ([]token, bool) {
	if p.done() {
		return nil, false
	}
	sl := p.cur()
	if len(sl.segments) == 0 {
		return nil, false
	}
	toks, err := lexLine(sl.segments[0])
	if err != nil {
		return nil, false
	}
	return toks, true
}

func (p *Parser) parseWhile(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	cond, err := exprFromTokens(toks, lineIdx)
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	for {
		ft, ok := p.firstSegmentTokens()
		if ok && len(ft) > 0 && ft[0].kind == tokKeyword && ft[0].lit == "WEND" {
			p.li++
			return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
		}
		if p.done() {
			return nil, fmt.Errorf("line %d: WHILE without WEND", lineIdx)
		}
		line, err := p.parseTopLine()
		if err != nil {
			return nil, err
		}
		body = append(body, line.Statements...)
	}
}

func (p *Parser) parseFor(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	idx, ok := splitOnTopLevelEq(toks)
	if !ok {
		return nil, fmt.Errorf("line %d: FOR requires variable = start", lineIdx)
	}
	v, err := varRefFromTokens(toks[:idx], lineIdx)
	if err != nil {
		return nil, err
	}
	rest := toks[idx+1:]
	toIdx := indexOfKeyword(rest, "TO")
	if toIdx < 0 {
		return nil, fmt.Errorf("line %d: FOR requires TO", lineIdx)
	}
	from, err := exprFromTokens(rest[:toIdx], lineIdx)
	if err != nil {
		return nil, err
	}
	rest = rest[toIdx+1:]
	var step ast.Expr
	stepIdx := indexOfKeyword(rest, "STEP")
	toExprToks := rest
	if stepIdx >= 0 {
		toExprToks = rest[:stepIdx]
		step, err = exprFromTokens(rest[stepIdx+1:], lineIdx)
		if err != nil {
			return nil, err
		}
	}
	to, err := exprFromTokens(toExprToks, lineIdx)
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	for {
		ft, ok := p.firstSegmentTokens()
		if ok && len(ft) > 0 && ft[0].kind == tokKeyword && ft[0].lit == "NEXT" {
			var nextVars []string
			for _, part := range splitOnTopLevelCommas(ft[1:]) {
				if len(part) > 0 && part[0].kind != tokEOF {
					nextVars = append(nextVars, part[0].lit)
				}
			}
			if len(nextVars) > 1 {
				// NEXT J, I closes this loop and leaves NEXT I on the line
				// for the enclosing FOR to consume.
				p.lines[p.li].segments[0] = "NEXT " + strings.Join(nextVars[1:], ", ")
			} else {
				p.li++
			}
			return &ast.ForStmt{Pos: pos, Var: v, From: from, To: to, Step: step, Body: body, NextVars: nextVars}, nil
		}
		if p.done() {
			return nil, fmt.Errorf("line %d: FOR without NEXT", lineIdx)
		}
		line, err := p.parseTopLine()
		if err != nil {
			return nil, err
		}
		body = append(body, line.Statements...)
	}
}

func (p *Parser) parseIf(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	thenIdx := indexOfKeyword(toks, "THEN")
	if thenIdx < 0 {
		return nil, fmt.Errorf("line %d: IF requires THEN", lineIdx)
	}
	cond, err := exprFromTokens(toks[:thenIdx], lineIdx)
	if err != nil {
		return nil, err
	}
	after := toks[thenIdx+1:]
	if len(after) > 0 && after[0].kind == tokKeyword && after[0].lit == "BEGIN" {
		return p.parseIfBegin(cond, lineIdx, pos)
	}

	elseIdx := indexOfKeyword(after, "ELSE")
	thenToks := after
	var elseToks []token
	if elseIdx >= 0 {
		thenToks = after[:elseIdx]
		elseToks = after[elseIdx+1:]
	}
	var thenStmts, elseStmts []ast.Statement
	if len(thenToks) > 0 {
		s, err := p.parseStatement(thenToks, lineIdx)
		if err != nil {
			return nil, err
		}
		thenStmts = []ast.Statement{s}
	}
	if len(elseToks) > 0 {
		s, err := p.parseStatement(elseToks, lineIdx)
		if err != nil {
			return nil, err
		}
		elseStmts = []ast.Statement{s}
	}
	return &ast.IfStmt{Pos: pos, Cond: cond, Then: thenStmts, Else: elseStmts}, nil
}

func (p *Parser) parseIfBegin(cond ast.Expr, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	stmt := &ast.IfStmt{Pos: pos, Cond: cond, Begin: true}
	var thenBlock []ast.Statement
	for {
		ft, ok := p.firstSegmentTokens()
		if ok && len(ft) >= 2 && ft[0].kind == tokKeyword && ft[0].lit == "ELSE" && ft[1].kind == tokKeyword && ft[1].lit == "BEGIN" {
			p.li++
			stmt.ThenBlock = thenBlock
			elseBlock, err := p.parseElseBeginBody(lineIdx)
			if err != nil {
				return nil, err
			}
			stmt.ElseBlock = elseBlock
			return stmt, nil
		}
		if ok && len(ft) >= 2 && ft[0].kind == tokKeyword && ft[0].lit == "END" && ft[1].kind == tokKeyword && ft[1].lit == "IF" {
			p.li++
			stmt.ThenBlock = thenBlock
			return stmt, nil
		}
		if p.done() {
			return nil, fmt.Errorf("line %d: IF...BEGIN without END IF", lineIdx)
		}
		line, err := p.parseTopLine()
		if err != nil {
			return nil, err
		}
		thenBlock = append(thenBlock, line.Statements...)
	}
}

func (p *Parser) parseElseBeginBody(lineIdx int) ([]ast.Statement, error) {
	var body []ast.Statement
	for {
		ft, ok := p.firstSegmentTokens()
		if ok && len(ft) >= 2 && ft[0].kind == tokKeyword && ft[0].lit == "END" && ft[1].kind == tokKeyword && ft[1].lit == "IF" {
			p.li++
			return body, nil
		}
		if ok && len(ft) >= 2 && ft[0].kind == tokKeyword && ft[0].lit == "ELSE" && ft[1].kind == tokKeyword && ft[1].lit == "BEGIN" {
			return nil, fmt.Errorf("line %d: mismatched ELSE BEGIN", lineIdx)
		}
		if p.done() {
			return nil, fmt.Errorf("line %d: ELSE BEGIN without END IF", lineIdx)
		}
		line, err := p.parseTopLine()
		if err != nil {
			return nil, err
		}
		body = append(body, line.Statements...)
	}
}
