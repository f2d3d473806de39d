package parser

import (
	"fmt"
	"strings"

	"github.com/gosuda/basicir/ast"
)

func posAt(lineIdx, idx int) ast.Pos {
	return ast.Pos{Line: lineIdx, StartIndex: idx, StopIndex: idx}
}

func (p *Parser) parseStatement(toks []token, lineIdx int) (ast.Statement, error) {
	head := toks[0]
	pos := posAt(lineIdx, head.pos)

	if head.kind == tokKeyword && head.lit == "REM" {
		return &ast.CommentStmt{Pos: pos, Text: head.number}, nil
	}

	if head.kind == tokKeyword {
		switch head.lit {
		case "LET":
			return p.parseAssignLike(toks[1:], lineIdx)
		case "SWAP":
			return parseSwap(toks[1:], lineIdx, pos)
		case "DIM":
			return parseDim(toks[1:], lineIdx, pos)
		case "DEFINT", "DEFLNG", "DEFSNG", "DEFDBL", "DEFSTR":
			return parseDefType(head.lit, toks[1:], lineIdx, pos)
		case "PRINT":
			return parsePrint(toks[1:], lineIdx, pos, false)
		case "WRITE":
			return parseWrite(toks[1:], lineIdx, pos, false)
		case "INPUT":
			return parseInput(toks[1:], lineIdx, pos, false)
		case "LINE":
			return parseLineInput(toks[1:], lineIdx, pos)
		case "DATA":
			return parseData(toks[1:], lineIdx, pos)
		case "READ":
			return parseRead(toks[1:], lineIdx, pos)
		case "RESTORE":
			return parseRestore(toks[1:], lineIdx, pos)
		case "RANDOMIZE":
			return parseRandomize(toks[1:], lineIdx, pos)
		case "GOTO":
			return parseGoto(toks[1:], lineIdx, pos)
		case "GOSUB":
			return parseGosub(toks[1:], lineIdx, pos)
		case "RETURN":
			return &ast.ReturnStmt{Pos: pos}, nil
		case "END":
			if len(toks) > 1 && toks[1].kind == tokKeyword && toks[1].lit == "IF" {
				return &ast.EndIfStmt{Pos: pos}, nil
			}
			return &ast.EndStmt{Pos: pos}, nil
		case "IF":
			return p.parseIf(toks[1:], lineIdx, pos)
		case "WHILE":
			return p.parseWhile(toks[1:], lineIdx, pos)
		case "WEND":
			return &ast.WendStmt{Pos: pos}, nil
		case "FOR":
			return p.parseFor(toks[1:], lineIdx, pos)
		case "NEXT":
			return parseNext(toks[1:], lineIdx, pos)
		case "DEF":
			return parseDefFn(toks[1:], lineIdx, pos)
		case "OPEN":
			return parseOpen(toks[1:], lineIdx, pos)
		case "CLOSE":
			return parseClose(toks[1:], lineIdx, pos)
		case "FIELD":
			return parseField(toks[1:], lineIdx, pos)
		case "GET":
			return parseGetPut(toks[1:], lineIdx, pos, true)
		case "PUT":
			return parseGetPut(toks[1:], lineIdx, pos, false)
		case "LSET":
			return parseLsetRset(toks[1:], lineIdx, pos, true)
		case "RSET":
			return parseLsetRset(toks[1:], lineIdx, pos, false)
		case "CALL":
			return parseCall(toks[1:], lineIdx, pos)
		case "REF":
			return parseRef(toks[1:], lineIdx, pos)
		}
	}

	// Implicit LET, or a bare command-style intrinsic (graphics/sound
	// statements, array bulk operations) named by an identifier.
	return p.parseAssignOrCall(toks, lineIdx, pos)
}

func exprFromTokens(toks []token, lineIdx int) (ast.Expr, error) {
	ep := newExprParser(toks, lineIdx)
	if ep.atEnd() {
		return nil, fmt.Errorf("line %d: expected expression", lineIdx)
	}
	e, err := ep.parseExpr(1)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineIdx, err)
	}
	if !ep.atEnd() {
		return nil, fmt.Errorf("line %d: unexpected token %q", lineIdx, ep.cur().lit)
	}
	return e, nil
}

func varRefFromTokens(toks []token, lineIdx int) (*ast.VarRef, error) {
	e, err := exprFromTokens(toks, lineIdx)
	if err != nil {
		return nil, err
	}
	v, ok := e.(*ast.VarRef)
	if !ok {
		return nil, fmt.Errorf("line %d: expected variable reference", lineIdx)
	}
	return v, nil
}

func splitOnTopLevelEq(toks []token) (int, bool) {
	depth := 0
	for i, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokEq:
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func (p *Parser) parseAssignLike(toks []token, lineIdx int) (ast.Statement, error) {
	idx, ok := splitOnTopLevelEq(toks)
	if !ok {
		return nil, fmt.Errorf("line %d: LET requires an assignment", lineIdx)
	}
	target, err := varRefFromTokens(toks[:idx], lineIdx)
	if err != nil {
		return nil, err
	}
	value, err := exprFromTokens(toks[idx+1:], lineIdx)
	if err != nil {
		return nil, err
	}
	return &ast.LetStmt{Pos: target.Pos, Target: target, Value: value}, nil
}

// parseAssignOrCall disambiguates "X = expr" / "X(i) = expr" from a
// command-style statement named by a leading identifier, e.g. a graphics
// or sound primitive invoked with a comma-separated argument list.
func (p *Parser) parseAssignOrCall(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if idx, ok := splitOnTopLevelEq(toks); ok {
		target, err := varRefFromTokens(toks[:idx], lineIdx)
		if err != nil {
			return nil, err
		}
		value, err := exprFromTokens(toks[idx+1:], lineIdx)
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Pos: target.Pos, Target: target, Value: value}, nil
	}
	if toks[0].kind != tokIdent {
		return nil, fmt.Errorf("line %d: unexpected token %q", lineIdx, toks[0].lit)
	}
	name := strings.ToUpper(toks[0].lit)
	var args []ast.Expr
	if len(toks) > 1 {
		ep := newExprParser(toks[1:], lineIdx)
		list, err := ep.parseExprList()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineIdx, err)
		}
		args = list
	}
	return &ast.CallStmt{Pos: pos, Name: name, Args: args}, nil
}

func parseSwap(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	idx := indexOfComma(toks)
	if idx < 0 {
		return nil, fmt.Errorf("line %d: SWAP requires two variables", lineIdx)
	}
	left, err := varRefFromTokens(toks[:idx], lineIdx)
	if err != nil {
		return nil, err
	}
	right, err := varRefFromTokens(toks[idx+1:], lineIdx)
	if err != nil {
		return nil, err
	}
	return &ast.SwapStmt{Pos: pos, Left: left, Right: right}, nil
}

func indexOfComma(toks []token) int {
	depth := 0
	for i, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokComma:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitOnTopLevelCommas(toks []token) [][]token {
	var out [][]token
	depth, start := 0, 0
	for i, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokComma:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}

func parseDim(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var decls []ast.DimDecl
	for _, part := range splitOnTopLevelCommas(toks) {
		if len(part) == 0 || part[0].kind != tokIdent {
			return nil, fmt.Errorf("line %d: DIM expects a variable name", lineIdx)
		}
		name := part[0].lit
		var dims []ast.Expr
		if len(part) > 1 && part[1].kind == tokLParen {
			closeIdx := matchParen(part, 1)
			if closeIdx < 0 {
				return nil, fmt.Errorf("line %d: unbalanced parens in DIM", lineIdx)
			}
			ep := newExprParser(part[2:closeIdx], lineIdx)
			list, err := ep.parseExprList()
			if err != nil {
				return nil, err
			}
			dims = list
		}
		decls = append(decls, ast.DimDecl{Name: name, Dims: dims})
	}
	return &ast.DimStmt{Pos: pos, Decls: decls}, nil
}

func matchParen(toks []token, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(toks); i++ {
		switch toks[i].kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var defTypeNames = map[string]string{
	"DEFINT": "INTEGER", "DEFLNG": "LONG", "DEFSNG": "SINGLE",
	"DEFDBL": "DOUBLE", "DEFSTR": "STRING",
}

func parseDefType(kw string, toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var ranges []ast.LetterRange
	for _, part := range splitOnTopLevelCommas(toks) {
		text := strings.ToUpper(tokensText(part))
		text = strings.TrimSpace(text)
		if strings.Contains(text, "-") {
			bounds := strings.SplitN(text, "-", 2)
			if len(bounds) != 2 || len(bounds[0]) != 1 || len(bounds[1]) != 1 {
				return nil, fmt.Errorf("line %d: malformed %s range %q", lineIdx, kw, text)
			}
			ranges = append(ranges, ast.LetterRange{From: bounds[0][0], To: bounds[1][0]})
		} else if len(text) == 1 {
			ranges = append(ranges, ast.LetterRange{From: text[0], To: text[0]})
		} else {
			return nil, fmt.Errorf("line %d: malformed %s range %q", lineIdx, kw, text)
		}
	}
	return &ast.DefTypeStmt{Pos: pos, Type: defTypeNames[kw], Ranges: ranges}, nil
}

func tokensText(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.lit != "" {
			b.WriteString(t.lit)
		}
	}
	return b.String()
}

func parsePrint(toks []token, lineIdx int, pos ast.Pos, hashForm bool) (ast.Statement, error) {
	stmt := &ast.PrintStmt{Pos: pos}
	rest := toks
	if len(rest) > 0 && rest[0].kind == tokOp && rest[0].lit == "#" {
		rest = rest[1:]
		fnEnd := indexOfComma(rest)
		if fnEnd < 0 {
			fnEnd = len(rest)
		}
		fn, err := exprFromTokens(rest[:fnEnd], lineIdx)
		if err != nil {
			return nil, err
		}
		stmt.FileNumber = fn
		if fnEnd < len(rest) {
			rest = rest[fnEnd+1:]
		} else {
			rest = nil
		}
	}
	if len(rest) > 0 && rest[0].kind == tokKeyword && rest[0].lit == "USING" {
		ep := newExprParser(rest[1:], lineIdx)
		fmtExpr, err := ep.parseExpr(1)
		if err != nil {
			return nil, err
		}
		stmt.Using = fmtExpr
		if ep.cur().kind != tokSemicolon && ep.cur().kind != tokComma {
			return stmt, nil
		}
		ep.advance()
		rest = rest[ep.pos+1:]
	}
	if len(rest) == 0 {
		stmt.TrailingNL = true
		return stmt, nil
	}
	args, seps, trailingNL, err := parsePrintArgs(rest, lineIdx)
	if err != nil {
		return nil, err
	}
	stmt.Args = args
	stmt.Separators = seps
	stmt.TrailingNL = trailingNL
	return stmt, nil
}

func parsePrintArgs(toks []token, lineIdx int) ([]ast.Expr, []string, bool, error) {
	var args []ast.Expr
	var seps []string
	trailingNL := true
	start := 0
	depth := 0
	for i := 0; i <= len(toks); i++ {
		atSep := i == len(toks)
		if !atSep {
			switch toks[i].kind {
			case tokLParen:
				depth++
			case tokRParen:
				depth--
			case tokSemicolon, tokComma:
				if depth == 0 {
					atSep = true
				}
			}
		}
		if atSep {
			if i > start {
				e, err := exprFromTokens(toks[start:i], lineIdx)
				if err != nil {
					return nil, nil, false, err
				}
				args = append(args, e)
			}
			if i == len(toks) {
				if len(toks) > 0 {
					last := toks[len(toks)-1]
					trailingNL = !(last.kind == tokSemicolon || last.kind == tokComma)
				}
				break
			}
			if toks[i].kind == tokSemicolon {
				seps = append(seps, ";")
			} else {
				seps = append(seps, ",")
			}
			start = i + 1
		}
	}
	return args, seps, trailingNL, nil
}

func parseWrite(toks []token, lineIdx int, pos ast.Pos, hashForm bool) (ast.Statement, error) {
	rest := toks
	var fileNumber ast.Expr
	if len(rest) > 0 && rest[0].kind == tokOp && rest[0].lit == "#" {
		rest = rest[1:]
		fnEnd := indexOfComma(rest)
		if fnEnd < 0 {
			fnEnd = len(rest)
		}
		fn, err := exprFromTokens(rest[:fnEnd], lineIdx)
		if err != nil {
			return nil, err
		}
		fileNumber = fn
		if fnEnd < len(rest) {
			rest = rest[fnEnd+1:]
		} else {
			rest = nil
		}
	}
	var args []ast.Expr
	for _, part := range splitOnTopLevelCommas(rest) {
		if len(part) == 0 {
			continue
		}
		e, err := exprFromTokens(part, lineIdx)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &ast.WriteStmt{Pos: pos, FileNumber: fileNumber, Args: args}, nil
}

func parseInput(toks []token, lineIdx int, pos ast.Pos, lineMode bool) (ast.Statement, error) {
	prompt := ""
	rest := toks
	var fileNumber ast.Expr
	if len(rest) > 0 && rest[0].kind == tokOp && rest[0].lit == "#" {
		rest = rest[1:]
		fnEnd := indexOfComma(rest)
		if fnEnd < 0 {
			fnEnd = len(rest)
		}
		fn, err := exprFromTokens(rest[:fnEnd], lineIdx)
		if err != nil {
			return nil, err
		}
		fileNumber = fn
		if fnEnd < len(rest) {
			rest = rest[fnEnd+1:]
		} else {
			rest = nil
		}
	}
	if len(rest) > 0 && rest[0].kind == tokString {
		prompt = rest[0].lit
		rest = rest[1:]
		if len(rest) > 0 && (rest[0].kind == tokSemicolon || rest[0].kind == tokComma) {
			rest = rest[1:]
		}
	}
	var targets []*ast.VarRef
	for _, part := range splitOnTopLevelCommas(rest) {
		if len(part) == 0 {
			continue
		}
		v, err := varRefFromTokens(part, lineIdx)
		if err != nil {
			return nil, err
		}
		targets = append(targets, v)
	}
	return &ast.InputStmt{Pos: pos, FileNumber: fileNumber, LineMode: lineMode, Prompt: prompt, Targets: targets}, nil
}

func parseLineInput(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 || toks[0].kind != tokKeyword || toks[0].lit != "INPUT" {
		return nil, fmt.Errorf("line %d: expected INPUT after LINE", lineIdx)
	}
	return parseInput(toks[1:], lineIdx, pos, true)
}

func parseData(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var values []ast.Expr
	for _, part := range splitOnTopLevelCommas(toks) {
		if len(part) == 0 {
			continue
		}
		e, err := exprFromTokens(part, lineIdx)
		if err != nil {
			return nil, err
		}
		values = append(values, e)
	}
	return &ast.DataStmt{Pos: pos, Values: values}, nil
}

func parseRead(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var targets []*ast.VarRef
	for _, part := range splitOnTopLevelCommas(toks) {
		if len(part) == 0 {
			continue
		}
		v, err := varRefFromTokens(part, lineIdx)
		if err != nil {
			return nil, err
		}
		targets = append(targets, v)
	}
	return &ast.ReadStmt{Pos: pos, Targets: targets}, nil
}

func parseRestore(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	target := ""
	if len(toks) > 0 {
		target = gotoTargetText(toks[0])
	}
	return &ast.RestoreStmt{Pos: pos, Target: target}, nil
}

func parseRandomize(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return &ast.RandomizeStmt{Pos: pos}, nil
	}
	if toks[0].kind == tokKeyword && toks[0].lit == "TIMER" {
		return &ast.RandomizeStmt{Pos: pos}, nil
	}
	e, err := exprFromTokens(toks, lineIdx)
	if err != nil {
		return nil, err
	}
	return &ast.RandomizeStmt{Pos: pos, Seed: e}, nil
}

// gotoTargetText returns a branch target's textual form: a line number's
// digits for a tokNumber target, or the label name for a tokIdent target.
func gotoTargetText(tok token) string {
	if tok.kind == tokNumber {
		return tok.number
	}
	return tok.lit
}

func parseGoto(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: GOTO requires a target", lineIdx)
	}
	return &ast.GotoStmt{Pos: pos, Target: gotoTargetText(toks[0])}, nil
}

func parseGosub(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: GOSUB requires a target", lineIdx)
	}
	return &ast.GosubStmt{Pos: pos, Target: gotoTargetText(toks[0])}, nil
}

func parseNext(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var vars []string
	for _, part := range splitOnTopLevelCommas(toks) {
		if len(part) == 0 {
			continue
		}
		vars = append(vars, part[0].lit)
	}
	return &ast.NextStmt{Pos: pos, Vars: vars}, nil
}

func parseOpen(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: OPEN requires a filename", lineIdx)
	}
	stmt := &ast.OpenStmt{Pos: pos}
	i := 0
	nameEnd := i
	for nameEnd < len(toks) && !(toks[nameEnd].kind == tokKeyword && (toks[nameEnd].lit == "FOR" || toks[nameEnd].lit == "AS")) {
		nameEnd++
	}
	name, err := exprFromTokens(toks[i:nameEnd], lineIdx)
	if err != nil {
		return nil, err
	}
	stmt.FileName = name
	i = nameEnd
	if i < len(toks) && toks[i].kind == tokKeyword && toks[i].lit == "FOR" {
		i++
		modeStart := i
		for i < len(toks) && !(toks[i].kind == tokKeyword && toks[i].lit == "AS") {
			i++
		}
		stmt.Mode = strings.ToUpper(tokensText(toks[modeStart:i]))
	}
	if i < len(toks) && toks[i].kind == tokKeyword && toks[i].lit == "AS" {
		i++
		if i < len(toks) && toks[i].kind == tokOp && toks[i].lit == "#" {
			i++
		}
		fnEnd := i
		for fnEnd < len(toks) && toks[fnEnd].kind != tokKeyword {
			fnEnd++
		}
		fn, err := exprFromTokens(toks[i:fnEnd], lineIdx)
		if err != nil {
			return nil, err
		}
		stmt.FileNumber = fn
		i = fnEnd
	}
	if i < len(toks) && toks[i].kind == tokKeyword && toks[i].lit == "LEN" {
		i++
		if i < len(toks) && toks[i].kind == tokEq {
			i++
		}
		recLen, err := exprFromTokens(toks[i:], lineIdx)
		if err != nil {
			return nil, err
		}
		stmt.RecordLen = recLen
	}
	return stmt, nil
}

func parseClose(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	var nums []ast.Expr
	for _, part := range splitOnTopLevelCommas(toks) {
		if len(part) == 0 {
			continue
		}
		if part[0].kind == tokOp && part[0].lit == "#" {
			part = part[1:]
		}
		if len(part) == 0 {
			continue
		}
		e, err := exprFromTokens(part, lineIdx)
		if err != nil {
			return nil, err
		}
		nums = append(nums, e)
	}
	return &ast.CloseStmt{Pos: pos, FileNumbers: nums}, nil
}

func parseField(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: FIELD requires a file number", lineIdx)
	}
	if toks[0].kind == tokOp && toks[0].lit == "#" {
		toks = toks[1:]
	}
	idx := indexOfComma(toks)
	if idx < 0 {
		return nil, fmt.Errorf("line %d: FIELD requires field declarations", lineIdx)
	}
	fn, err := exprFromTokens(toks[:idx], lineIdx)
	if err != nil {
		return nil, err
	}
	stmt := &ast.FieldStmt{Pos: pos, FileNumber: fn}
	for _, part := range splitOnTopLevelCommas(toks[idx+1:]) {
		asIdx := -1
		for i, t := range part {
			if t.kind == tokKeyword && t.lit == "AS" {
				asIdx = i
				break
			}
		}
		if asIdx < 0 {
			return nil, fmt.Errorf("line %d: malformed FIELD declaration", lineIdx)
		}
		width, err := exprFromTokens(part[:asIdx], lineIdx)
		if err != nil {
			return nil, err
		}
		v, err := varRefFromTokens(part[asIdx+1:], lineIdx)
		if err != nil {
			return nil, err
		}
		stmt.Fields = append(stmt.Fields, ast.FieldDecl{Width: width, Var: v})
	}
	return stmt, nil
}

func parseGetPut(toks []token, lineIdx int, pos ast.Pos, isGet bool) (ast.Statement, error) {
	parts := splitOnTopLevelCommas(toks)
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil, fmt.Errorf("line %d: %s requires a file number", lineIdx, map[bool]string{true: "GET", false: "PUT"}[isGet])
	}
	if parts[0][0].kind == tokOp && parts[0][0].lit == "#" {
		parts[0] = parts[0][1:]
	}
	fn, err := exprFromTokens(parts[0], lineIdx)
	if err != nil {
		return nil, err
	}
	var recNum ast.Expr
	if len(parts) > 1 && len(parts[1]) > 0 {
		recNum, err = exprFromTokens(parts[1], lineIdx)
		if err != nil {
			return nil, err
		}
	}
	if isGet {
		return &ast.GetStmt{Pos: pos, FileNumber: fn, RecordNum: recNum}, nil
	}
	return &ast.PutStmt{Pos: pos, FileNumber: fn, RecordNum: recNum}, nil
}

func parseLsetRset(toks []token, lineIdx int, pos ast.Pos, isLset bool) (ast.Statement, error) {
	idx, ok := splitOnTopLevelEq(toks)
	if !ok {
		return nil, fmt.Errorf("line %d: %s requires an assignment", lineIdx, map[bool]string{true: "LSET", false: "RSET"}[isLset])
	}
	target, err := varRefFromTokens(toks[:idx], lineIdx)
	if err != nil {
		return nil, err
	}
	value, err := exprFromTokens(toks[idx+1:], lineIdx)
	if err != nil {
		return nil, err
	}
	if isLset {
		return &ast.LsetStmt{Pos: pos, Target: target, Value: value}, nil
	}
	return &ast.RsetStmt{Pos: pos, Target: target, Value: value}, nil
}

func parseCall(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: CALL requires a name", lineIdx)
	}
	name := strings.ToUpper(toks[0].lit)
	var args []ast.Expr
	if len(toks) > 1 {
		ep := newExprParser(toks[1:], lineIdx)
		if ep.cur().kind == tokLParen {
			ep.advance()
			if ep.cur().kind != tokRParen {
				list, err := ep.parseExprList()
				if err != nil {
					return nil, err
				}
				args = list
			}
		} else {
			list, err := ep.parseExprList()
			if err != nil {
				return nil, err
			}
			args = list
		}
	}
	return &ast.CallStmt{Pos: pos, Name: name, Args: args}, nil
}

func parseRef(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: REF requires a name", lineIdx)
	}
	name := toks[0].lit
	idx, ok := splitOnTopLevelEq(toks[1:])
	if !ok {
		return nil, fmt.Errorf("line %d: REF requires = target", lineIdx)
	}
	target, err := varRefFromTokens(toks[1:][idx+1:], lineIdx)
	if err != nil {
		return nil, err
	}
	return &ast.RefStmt{Pos: pos, Name: name, Target: target}, nil
}

func parseDefFn(toks []token, lineIdx int, pos ast.Pos) (ast.Statement, error) {
	if len(toks) == 0 || toks[0].kind != tokKeyword || toks[0].lit != "FN" {
		return nil, fmt.Errorf("line %d: expected FN after DEF", lineIdx)
	}
	rest := toks[1:]
	if len(rest) == 0 || rest[0].kind != tokIdent {
		return nil, fmt.Errorf("line %d: expected function name after DEF FN", lineIdx)
	}
	name := "FN" + rest[0].lit
	rest = rest[1:]
	var params []string
	if len(rest) > 0 && rest[0].kind == tokLParen {
		closeIdx := matchParen(rest, 0)
		if closeIdx < 0 {
			return nil, fmt.Errorf("line %d: unbalanced parens in DEF FN", lineIdx)
		}
		for _, part := range splitOnTopLevelCommas(rest[1:closeIdx]) {
			if len(part) > 0 {
				params = append(params, part[0].lit)
			}
		}
		rest = rest[closeIdx+1:]
	}
	idx, ok := splitOnTopLevelEq(rest)
	if !ok {
		return nil, fmt.Errorf("line %d: DEF FN requires = expr", lineIdx)
	}
	value, err := exprFromTokens(rest[idx+1:], lineIdx)
	if err != nil {
		return nil, err
	}
	resultVar := &ast.VarRef{Pos: pos, Name: name}
	body := []ast.Statement{&ast.LetStmt{Pos: pos, Target: resultVar, Value: value}}
	return &ast.DefFnStmt{Pos: pos, Name: name, Params: params, Body: body}, nil
}
