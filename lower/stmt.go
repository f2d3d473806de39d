package lower

import (
	"strconv"
	"strings"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

// lowerStatement dispatches a single statement to its lowering rule. Block
// constructs (IF/WHILE/FOR/DEF FN) recurse into lowerStatement for their
// bodies from control.go.
func (l *Lowerer) lowerStatement(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.CommentStmt:
		l.emit(st.Pos, ir.COMMENT, symbols.NULLID, symbols.NULLID, symbols.NULLID)
		return nil
	case *ast.LetStmt:
		return l.lowerLet(st)
	case *ast.SwapStmt:
		return l.lowerSwap(st)
	case *ast.DimStmt:
		return l.lowerDim(st)
	case *ast.DefTypeStmt:
		return l.lowerDefType(st)
	case *ast.PrintStmt:
		return l.lowerPrint(st)
	case *ast.WriteStmt:
		return l.lowerWrite(st)
	case *ast.InputStmt:
		return l.lowerInput(st)
	case *ast.DataStmt:
		return l.lowerData(st)
	case *ast.ReadStmt:
		return l.lowerRead(st)
	case *ast.RestoreStmt:
		return l.lowerRestore(st)
	case *ast.RandomizeStmt:
		return l.lowerRandomize(st)
	case *ast.IfStmt:
		return l.lowerIf(st)
	case *ast.WhileStmt:
		return l.lowerWhile(st)
	case *ast.ForStmt:
		return l.lowerFor(st)
	case *ast.GotoStmt:
		return l.lowerGoto(st)
	case *ast.GosubStmt:
		return l.lowerGosub(st)
	case *ast.ReturnStmt:
		l.emit(st.Pos, ir.RETURN, symbols.NULLID, symbols.NULLID, symbols.NULLID)
		return nil
	case *ast.LabelStmt:
		id := l.tbl.AddNamedLabel(st.Name)
		l.emit(st.Pos, ir.LABEL, id, symbols.NULLID, symbols.NULLID)
		return nil
	case *ast.EndStmt:
		l.emit(st.Pos, ir.END, symbols.NULLID, symbols.NULLID, symbols.NULLID)
		return nil
	case *ast.DefFnStmt:
		return l.lowerDefFn(st)
	case *ast.OpenStmt:
		return l.lowerOpen(st)
	case *ast.CloseStmt:
		return l.lowerClose(st)
	case *ast.FieldStmt:
		return l.lowerField(st)
	case *ast.GetStmt:
		return l.lowerGetPut(st.Pos, st.FileNumber, st.RecordNum, ir.GET)
	case *ast.PutStmt:
		return l.lowerGetPut(st.Pos, st.FileNumber, st.RecordNum, ir.PUT)
	case *ast.LsetStmt:
		return l.lowerLsetRset(st.Pos, st.Target, st.Value, ir.LSET)
	case *ast.RsetStmt:
		return l.lowerLsetRset(st.Pos, st.Target, st.Value, ir.RSET)
	case *ast.CallStmt:
		return l.lowerCall(st)
	case *ast.RefStmt:
		return l.lowerRef(st)
	case *ast.NextStmt:
		return l.semanticErr(NextWithoutFor, "NEXT without matching FOR", strings.Join(st.Vars, ","))
	case *ast.WendStmt:
		return l.semanticErr(WendWithoutWhile, "WEND without matching WHILE")
	case *ast.EndIfStmt:
		return l.semanticErr(MismatchedEndIf, "END IF without matching IF...BEGIN")
	default:
		return l.internalErr("unhandled statement node %T", s)
	}
}

func (l *Lowerer) lowerLet(st *ast.LetStmt) error {
	target, err := l.lowerLValue(st.Target)
	if err != nil {
		return err
	}
	value, err := l.lowerExpr(st.Value)
	if err != nil {
		return err
	}
	lhsStr := l.tbl.DataTypeOf(target.Result()) == symbols.String
	rhsStr := l.tbl.DataTypeOf(value.Result()) == symbols.String
	if lhsStr != rhsStr {
		return l.semanticErr(DataTypeMismatch, "cannot assign string and numeric values to each other", st.Target.Name)
	}
	l.emit(st.Pos, ir.ASSIGN, target.Result(), value.Result(), target.Result())
	return nil
}

func (l *Lowerer) lowerSwap(st *ast.SwapStmt) error {
	left, err := l.lowerLValue(st.Left)
	if err != nil {
		return err
	}
	right, err := l.lowerLValue(st.Right)
	if err != nil {
		return err
	}
	if serr := checkDataTypeMatch(l.tbl.DataTypeOf(left.Result()), l.tbl.DataTypeOf(right.Result())); serr != nil {
		return serr
	}
	l.emit(st.Pos, ir.SWAP, left.Result(), right.Result(), symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerDim(st *ast.DimStmt) error {
	for _, decl := range st.Decls {
		vn, err := l.resolveVariableName(decl.Name)
		if err != nil {
			return err
		}
		dims := make([]int, 0, len(decl.Dims))
		for _, d := range decl.Dims {
			n, err := l.constIntBound(decl.Name, d)
			if err != nil {
				return err
			}
			dims = append(dims, n)
		}
		rank := len(dims)
		_, err = l.tbl.AddVariableOrUDF(vn,
			func(n symbols.VariableName) symbols.Entry {
				return &symbols.Variable{Name: n, Rank: rank, Dims: dims}
			},
			func(id int, e symbols.Entry) error {
				v, ok := e.(*symbols.Variable)
				if !ok {
					return l.internalErr("expected Variable entry for %s, got %v", decl.Name, e.Kind())
				}
				v.Rank = rank
				v.Dims = dims
				return nil
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// constIntBound evaluates a DIM dimension expression, which must be a
// constant integer literal (spec.md's array bounds are compile-time
// constants). The parser accepts any expression as a DIM bound; one that
// is not an integer literal is rejected here with BadArgument.
func (l *Lowerer) constIntBound(name string, e ast.Expr) (int, error) {
	lit, ok := e.(*ast.NumberLit)
	if !ok {
		return 0, l.semanticErr(BadArgument, "DIM bounds must be constant integers", name)
	}
	switch lit.Suffix {
	case '!', '#', '$':
		return 0, l.semanticErr(BadArgument, "DIM bounds must be integers", name)
	}
	n, err := strconv.ParseInt(lit.Text, lit.Base, 64)
	if err != nil {
		return 0, l.semanticErr(BadArgument, "malformed DIM bound: "+err.Error(), name)
	}
	return int(n), nil
}

func (l *Lowerer) lowerDefType(st *ast.DefTypeStmt) error {
	dt, err := defTypeDataType(st.Type)
	if err != nil {
		return l.internalErr("%s", err.Error())
	}
	for _, r := range st.Ranges {
		l.tbl.SetDefaultDataType(r.From, r.To, dt)
	}
	return nil
}

func defTypeDataType(name string) (symbols.DataType, error) {
	switch strings.ToUpper(name) {
	case "INTEGER":
		return symbols.Int32, nil
	case "LONG":
		return symbols.Int64, nil
	case "SINGLE":
		return symbols.Float32, nil
	case "DOUBLE":
		return symbols.Float64, nil
	case "STRING":
		return symbols.String, nil
	default:
		return 0, newInternalError("unknown DEFtype name %q", name)
	}
}

func (l *Lowerer) lowerPrint(st *ast.PrintStmt) error {
	fileID := symbols.NULLID
	if st.FileNumber != nil {
		instr, err := l.lowerExpr(st.FileNumber)
		if err != nil {
			return err
		}
		fileID = instr.Result()
	}
	var usingID int = symbols.NULLID
	if st.Using != nil {
		instr, err := l.lowerExpr(st.Using)
		if err != nil {
			return err
		}
		usingID = instr.Result()
	}
	for _, a := range st.Args {
		instr, err := l.lowerExpr(a)
		if err != nil {
			return err
		}
		if st.Using != nil {
			l.emit(st.Pos, ir.PRINTUSING, usingID, instr.Result(), symbols.NULLID)
		} else {
			l.emit(st.Pos, ir.PRINT, instr.Result(), fileID, symbols.NULLID)
		}
	}
	// A trailing ";" or "," in the print list suppresses the newline that
	// otherwise ends every PRINT; file output always gets one regardless.
	if st.TrailingNL || fileID != symbols.NULLID {
		nlID := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: "\n"})
		l.emit(st.Pos, ir.PRINT, nlID, fileID, symbols.NULLID)
	}
	l.emit(st.Pos, ir.FLUSH, fileID, symbols.NULLID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerWrite(st *ast.WriteStmt) error {
	fileID := symbols.NULLID
	if st.FileNumber != nil {
		instr, err := l.lowerExpr(st.FileNumber)
		if err != nil {
			return err
		}
		fileID = instr.Result()
	}
	op := ir.WRITE
	if fileID != symbols.NULLID {
		op = ir.WRITEHASH
	}
	for _, a := range st.Args {
		instr, err := l.lowerExpr(a)
		if err != nil {
			return err
		}
		l.emit(st.Pos, op, instr.Result(), fileID, symbols.NULLID)
	}
	l.emit(st.Pos, ir.FLUSH, fileID, symbols.NULLID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerInput(st *ast.InputStmt) error {
	fileID := symbols.NULLID
	if st.FileNumber != nil {
		instr, err := l.lowerExpr(st.FileNumber)
		if err != nil {
			return err
		}
		fileID = instr.Result()
	}
	var op ir.OpCode
	switch {
	case st.LineMode && fileID != symbols.NULLID:
		op = ir.LINEINPUTHASH
	case st.LineMode:
		op = ir.LINEINPUT
	case fileID != symbols.NULLID:
		op = ir.INPUTHASH
	default:
		op = ir.INPUT
	}
	if fileID == symbols.NULLID {
		prompt := st.Prompt
		if prompt == "" && !st.LineMode {
			prompt = "?"
		}
		promptID := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: prompt})
		l.emit(st.Pos, ir.PARAM2, promptID, symbols.NULLID, symbols.NULLID)
	}
	for _, target := range st.Targets {
		lv, err := l.lowerLValue(target)
		if err != nil {
			return err
		}
		l.emit(st.Pos, op, lv.Result(), fileID, symbols.NULLID)
	}
	return nil
}

func (l *Lowerer) lowerData(st *ast.DataStmt) error {
	for _, v := range st.Values {
		instr, err := l.lowerExpr(v)
		if err != nil {
			return err
		}
		l.emit(st.Pos, ir.DATA, instr.Result(), symbols.NULLID, symbols.NULLID)
	}
	return nil
}

func (l *Lowerer) lowerRead(st *ast.ReadStmt) error {
	for _, target := range st.Targets {
		lv, err := l.lowerLValue(target)
		if err != nil {
			return err
		}
		l.emit(st.Pos, ir.READ, lv.Result(), symbols.NULLID, symbols.NULLID)
	}
	return nil
}

func (l *Lowerer) lowerRestore(st *ast.RestoreStmt) error {
	targetID := symbols.NULLID
	if st.Target != "" {
		targetID, _ = targetLabelID(l.tbl, st.Target)
	}
	l.emit(st.Pos, ir.RESTORE, targetID, symbols.NULLID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerRandomize(st *ast.RandomizeStmt) error {
	if st.Seed == nil {
		l.emit(st.Pos, ir.RANDOMIZE_TIMER, symbols.NULLID, symbols.NULLID, symbols.NULLID)
		return nil
	}
	instr, err := l.lowerExpr(st.Seed)
	if err != nil {
		return err
	}
	if serr := assertNumeric("RANDOMIZE seed must be numeric", l.tbl.DataTypeOf(instr.Result())); serr != nil {
		return serr
	}
	l.emit(st.Pos, ir.RANDOMIZE, instr.Result(), symbols.NULLID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerOpen(st *ast.OpenStmt) error {
	fileName, err := l.lowerExpr(st.FileName)
	if err != nil {
		return err
	}
	fileNum, err := l.lowerExpr(st.FileNumber)
	if err != nil {
		return err
	}
	l.emit(st.Pos, ir.PARAM2, fileName.Result(), fileNum.Result(), symbols.NULLID)

	modeTmp := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: st.Mode})
	accessTmp := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: st.AccessMode})
	l.emit(st.Pos, ir.PARAM2, modeTmp, accessTmp, symbols.NULLID)

	lockTmp := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: st.LockMode})
	recLenID := symbols.NULLID
	if st.RecordLen != nil {
		r, err := l.lowerExpr(st.RecordLen)
		if err != nil {
			return err
		}
		recLenID = r.Result()
	}
	l.emit(st.Pos, ir.PARAM2, lockTmp, recLenID, symbols.NULLID)
	l.emit(st.Pos, ir.OPEN, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerClose(st *ast.CloseStmt) error {
	if len(st.FileNumbers) == 0 {
		l.emit(st.Pos, ir.CLOSE_ALL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
		return nil
	}
	for _, fn := range st.FileNumbers {
		instr, err := l.lowerExpr(fn)
		if err != nil {
			return err
		}
		l.emit(st.Pos, ir.CLOSE, instr.Result(), symbols.NULLID, symbols.NULLID)
	}
	return nil
}

func (l *Lowerer) lowerField(st *ast.FieldStmt) error {
	fileNum, err := l.lowerExpr(st.FileNumber)
	if err != nil {
		return err
	}
	for _, f := range st.Fields {
		width, err := l.lowerExpr(f.Width)
		if err != nil {
			return err
		}
		v, err := l.lowerLValue(f.Var)
		if err != nil {
			return err
		}
		l.emit(st.Pos, ir.PARAM2, v.Result(), width.Result(), symbols.NULLID)
	}
	count := l.tbl.AddTmp(symbols.Int32, &symbols.Literal{Type: symbols.Int32, I32: int32(len(st.Fields))})
	l.emit(st.Pos, ir.FIELD, fileNum.Result(), count, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerGetPut(pos ast.Pos, fileNumber, recordNum ast.Expr, op ir.OpCode) error {
	fileNum, err := l.lowerExpr(fileNumber)
	if err != nil {
		return err
	}
	recID := symbols.NULLID
	if recordNum != nil {
		r, err := l.lowerExpr(recordNum)
		if err != nil {
			return err
		}
		recID = r.Result()
	}
	l.emit(pos, op, fileNum.Result(), recID, symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerLsetRset(pos ast.Pos, target *ast.VarRef, value ast.Expr, op ir.OpCode) error {
	t, err := l.lowerLValue(target)
	if err != nil {
		return err
	}
	v, err := l.lowerExpr(value)
	if err != nil {
		return err
	}
	l.emit(pos, op, t.Result(), v.Result(), symbols.NULLID)
	return nil
}

func (l *Lowerer) lowerRef(st *ast.RefStmt) error {
	vn, err := l.resolveVariableName(st.Name)
	if err != nil {
		return err
	}
	target, err := l.lowerLValue(st.Target)
	if err != nil {
		return err
	}
	var refID int
	if _, inScope := l.tbl.InScope(); inScope {
		refID, err = l.tbl.AddParam(vn)
		if err != nil {
			return err
		}
	} else {
		refID, err = l.tbl.AddVariableOrUDF(vn,
			func(n symbols.VariableName) symbols.Entry { return &symbols.Variable{Name: n} },
			nil)
		if err != nil {
			return err
		}
	}
	l.emit(st.Pos, ir.REF, refID, target.Result(), symbols.NULLID)
	return nil
}

// pushParams emits the leading operand ids as PARAM2 pairs, in call order,
// until at most two remain; those become the terminating opcode's own
// operands directly.
func (l *Lowerer) pushParams(pos ast.Pos, ids []int) (op1, op2 int) {
	for len(ids) > 2 {
		l.emit(pos, ir.PARAM2, ids[0], ids[1], symbols.NULLID)
		ids = ids[2:]
	}
	switch len(ids) {
	case 0:
		return symbols.NULLID, symbols.NULLID
	case 1:
		return ids[0], symbols.NULLID
	}
	return ids[0], ids[1]
}
