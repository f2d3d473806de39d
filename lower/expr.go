package lower

import (
	"fmt"
	"strings"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/numlit"
	"github.com/gosuda/basicir/symbols"
)

// lowerExpr lowers e and every sub-expression it contains, post-order:
// operands are always lowered (and their Instruction bound via
// bindResult) before the node that consumes them, matching the parse-
// tree adapter's requirement that a node's Instruction be available by
// the time its parent rule runs.
func (l *Lowerer) lowerExpr(e ast.Expr) (*ir.Instruction, error) {
	switch v := e.(type) {
	case *ast.NumberLit:
		return l.lowerNumberLit(v)
	case *ast.StringLit:
		return l.lowerStringLit(v)
	case *ast.VarRef:
		return l.lowerVarRef(v)
	case *ast.UnaryExpr:
		return l.lowerUnary(v)
	case *ast.BinaryExpr:
		return l.lowerBinary(v)
	case *ast.FuncCall:
		return l.lowerFuncCall(v)
	default:
		return nil, l.internalErr("unhandled expression node %T", e)
	}
}

func (l *Lowerer) lowerNumberLit(n *ast.NumberLit) (*ir.Instruction, error) {
	v, err := numlit.Parse(n.Text, n.Base, n.Suffix)
	if err != nil {
		return nil, newSemanticError(DataTypeMismatch, n.Text, err.Error())
	}
	lit := &symbols.Literal{Type: v.Type, I32: v.I32, I64: v.I64, F32: v.F32, F64: v.F64}
	id := l.tbl.AddTmp(v.Type, lit)
	instr := l.emit(n.Pos, ir.VALUE, id, symbols.NULLID, id)
	return l.bindResult(n, instr), nil
}

func (l *Lowerer) lowerStringLit(s *ast.StringLit) (*ir.Instruction, error) {
	id := l.tbl.AddTmp(symbols.String, &symbols.Literal{Type: symbols.String, Str: s.Value})
	instr := l.emit(s.Pos, ir.VALUE, id, symbols.NULLID, id)
	return l.bindResult(s, instr), nil
}

// lowerVarRef dispatches a name reference to its UDF-call, array, or
// scalar lowering depending on the "FN" naming convention and the
// variable's declared rank.
func (l *Lowerer) lowerVarRef(v *ast.VarRef) (*ir.Instruction, error) {
	if isUDFName(v.Name) {
		return l.lowerUDFCall(v)
	}
	return l.lowerScalarOrArray(v)
}

func isUDFName(name string) bool {
	bare, _ := splitNameSuffix(name)
	return len(bare) >= 2 && strings.HasPrefix(strings.ToUpper(bare), "FN")
}

// lowerScalarOrArray handles VARIABLE and ARRAY reference lowering
// (spec.md §4.3 "Variable references", cases 1 and 2). The variable's
// rank is set by whichever reference or DIM created it, and a later DIM
// resets it; other references must agree with that shape.
func (l *Lowerer) lowerScalarOrArray(v *ast.VarRef) (*ir.Instruction, error) {
	vn, err := l.resolveVariableName(v.Name)
	if err != nil {
		return nil, err
	}

	var instr *ir.Instruction
	_, aerr := l.tbl.AddVariableOrUDF(vn,
		func(n symbols.VariableName) symbols.Entry {
			return &symbols.Variable{Name: n, Rank: len(v.Args)}
		},
		func(id int, e symbols.Entry) error {
			variable, ok := e.(*symbols.Variable)
			if !ok {
				return l.internalErr("expected Variable entry for %s, got %v", v.Name, e.Kind())
			}
			if variable.Rank == 0 {
				if len(v.Args) > 0 {
					return l.semanticErr(ScalarVariableCannotBeIndexed, "scalar variable cannot be indexed", v.Name)
				}
				instr = l.emit(v.Pos, ir.VARIABLE, id, symbols.NULLID, id)
				return nil
			}
			if len(v.Args) == 0 {
				return l.semanticErr(BadArgument, "array reference requires indices", v.Name)
			}
			l.emit(v.Pos, ir.RESET_ARRAY_IDX, id, symbols.NULLID, symbols.NULLID)
			for _, argExpr := range v.Args {
				argInstr, err := l.lowerExpr(argExpr)
				if err != nil {
					return err
				}
				l.emit(v.Pos, ir.SET_ARRAY_IDX, id, argInstr.Result(), symbols.NULLID)
			}
			refID := l.tbl.AddArrayReference(id)
			instr = l.emit(v.Pos, ir.ARRAYREF, id, refID, refID)
			return nil
		})
	if aerr != nil {
		return nil, aerr
	}
	return l.bindResult(v, instr), nil
}

// lowerLValue is lowerScalarOrArray restricted to assignment targets: a
// UDF name on the left-hand side is always a BadAssignment error,
// checked before we ever touch the symbol table.
func (l *Lowerer) lowerLValue(v *ast.VarRef) (*ir.Instruction, error) {
	if isUDFName(v.Name) {
		return nil, l.semanticErr(BadAssignment, "cannot assign to a UDF", v.Name)
	}
	return l.lowerScalarOrArray(v)
}

// lowerUDFCall implements spec.md §4.3's "UDF call" case: push a runtime
// scope, copy actuals into the declared parameters, transfer to the
// function body, and copy its return value out.
func (l *Lowerer) lowerUDFCall(v *ast.VarRef) (*ir.Instruction, error) {
	vn, err := l.resolveVariableName(v.Name)
	if err != nil {
		return nil, err
	}

	var result *ir.Instruction
	_, aerr := l.tbl.AddVariableOrUDF(vn,
		func(n symbols.VariableName) symbols.Entry {
			return &symbols.UDF{Name: v.Name, ReturnType: n.Type, ReturnID: symbols.NULLID, StartLabel: symbols.NULLID}
		},
		func(id int, e symbols.Entry) error {
			udf, ok := e.(*symbols.UDF)
			if !ok {
				return l.internalErr("expected UDF entry for %s, got %v", v.Name, e.Kind())
			}
			if udf.ReturnID == symbols.NULLID {
				udf.ReturnID = l.tbl.AddTmp(udf.ReturnType, nil)
			}
			if len(v.Args) != len(udf.Params) {
				return l.semanticErr(InsufficientUDFArgs,
					fmt.Sprintf("%s expects %d arg(s), got %d", v.Name, len(udf.Params), len(v.Args)), v.Name)
			}

			pushScope := l.emit(v.Pos, ir.PUSH_RT_SCOPE, id, symbols.NULLID, symbols.NULLID)
			for i, argExpr := range v.Args {
				argInstr, err := l.lowerExpr(argExpr)
				if err != nil {
					return err
				}
				paramID := udf.Params[i]
				l.emit(v.Pos, ir.COPY, paramID, argInstr.Result(), paramID)
			}
			l.emit(v.Pos, ir.GOTO_LABEL, udf.StartLabel, symbols.NULLID, symbols.NULLID)
			labelReturn := l.emit(v.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
			pushScope.PatchOp2(labelReturn.Op1())
			l.emit(v.Pos, ir.POP_RT_SCOPE, id, symbols.NULLID, symbols.NULLID)

			// Copy the return value out to a fresh temp so a later call to
			// the same (possibly recursive) UDF cannot clobber a value the
			// enclosing expression still needs.
			tmp := l.tbl.AddTmpCompatibleWith(udf.ReturnID)
			result = l.emit(v.Pos, ir.COPY, tmp, udf.ReturnID, tmp)
			return nil
		})
	if aerr != nil {
		return nil, aerr
	}
	return l.bindResult(v, result), nil
}

func (l *Lowerer) lowerUnary(u *ast.UnaryExpr) (*ir.Instruction, error) {
	operand, err := l.lowerExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	dt := l.tbl.DataTypeOf(operand.Result())

	var instr *ir.Instruction
	switch strings.ToUpper(u.Op) {
	case "-":
		if serr := assertNumeric("unary minus requires a numeric operand", dt); serr != nil {
			return nil, serr
		}
		result := l.tbl.AddTmpCompatibleWith(operand.Result())
		instr = l.emit(u.Pos, ir.UNARY_MINUS, operand.Result(), symbols.NULLID, result)
	case "NOT":
		if serr := assertNumeric("NOT requires a numeric operand", dt); serr != nil {
			return nil, serr
		}
		result := l.tbl.AddTmp(symbols.Int64, nil)
		instr = l.emit(u.Pos, ir.NOT, operand.Result(), symbols.NULLID, result)
	default:
		return nil, l.internalErr("unknown unary operator %q", u.Op)
	}
	return l.bindResult(u, instr), nil
}

func (l *Lowerer) lowerBinary(b *ast.BinaryExpr) (*ir.Instruction, error) {
	left, err := l.lowerExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.lowerExpr(b.Right)
	if err != nil {
		return nil, err
	}
	dt1 := l.tbl.DataTypeOf(left.Result())
	dt2 := l.tbl.DataTypeOf(right.Result())

	var instr *ir.Instruction
	op := strings.ToUpper(b.Op)
	switch op {
	case "+":
		if dt1 == symbols.String && dt2 == symbols.String {
			result := l.tbl.AddTmp(symbols.String, nil)
			instr = l.emit(b.Pos, ir.CONCAT, left.Result(), right.Result(), result)
			break
		}
		instr, err = l.arithBinary(b.Pos, addFamily, left, right, dt1, dt2)
	case "-":
		instr, err = l.arithBinary(b.Pos, subFamily, left, right, dt1, dt2)
	case "*":
		instr, err = l.arithBinary(b.Pos, mulFamily, left, right, dt1, dt2)
	case "^":
		instr, err = l.arithBinary(b.Pos, expFamily, left, right, dt1, dt2)
	case "\\":
		if serr := assertNumeric("integer division requires numeric operands", dt1, dt2); serr != nil {
			return nil, serr
		}
		result := l.tbl.AddTmp(upcast(dt1, dt2), nil)
		instr = l.emit(b.Pos, ir.IDIV, left.Result(), right.Result(), result)
	case "/":
		if serr := assertNumeric("division requires numeric operands", dt1, dt2); serr != nil {
			return nil, serr
		}
		result := l.tbl.AddTmp(symbols.Float64, nil)
		instr = l.emit(b.Pos, ir.FDIV, left.Result(), right.Result(), result)
	case "MOD":
		if serr := assertNumeric("MOD requires numeric operands", dt1, dt2); serr != nil {
			return nil, serr
		}
		result := l.tbl.AddTmp(upcast(dt1, dt2), nil)
		instr = l.emit(b.Pos, ir.MOD, left.Result(), right.Result(), result)
	case "=", "<>", "<", "<=", ">", ">=":
		instr, err = l.comparisonBinary(b.Pos, op, left, right, dt1, dt2)
	case "AND", "OR", "XOR", "EQV", "IMP":
		instr, err = l.logicalBinary(b.Pos, op, left, right, dt1, dt2)
	default:
		return nil, l.internalErr("unknown binary operator %q", b.Op)
	}
	if err != nil {
		return nil, err
	}
	return l.bindResult(b, instr), nil
}

func (l *Lowerer) arithBinary(pos ast.Pos, family arithFamily, left, right *ir.Instruction, dt1, dt2 symbols.DataType) (*ir.Instruction, error) {
	if serr := assertNumeric("arithmetic requires numeric operands", dt1, dt2); serr != nil {
		return nil, serr
	}
	result := l.tbl.AddTmp(upcast(dt1, dt2), nil)
	op, err := family.pick(upcast(dt1, dt2))
	if err != nil {
		return nil, err
	}
	return l.emit(pos, op, left.Result(), right.Result(), result), nil
}

func (l *Lowerer) comparisonBinary(pos ast.Pos, op string, left, right *ir.Instruction, dt1, dt2 symbols.DataType) (*ir.Instruction, error) {
	if serr := checkDataTypeMatch(dt1, dt2); serr != nil {
		return nil, serr
	}
	var family compareFamily
	switch op {
	case "=":
		family = eqFamily
	case "<>":
		family = neFamily
	case "<":
		family = ltFamily
	case "<=":
		family = leFamily
	case ">":
		family = gtFamily
	case ">=":
		family = geFamily
	default:
		return nil, l.internalErr("unknown comparison operator %q", op)
	}
	code, err := family.pick(dt1, dt2)
	if err != nil {
		return nil, err
	}
	result := l.tbl.AddTmp(symbols.Int64, nil)
	return l.emit(pos, code, left.Result(), right.Result(), result), nil
}

func (l *Lowerer) logicalBinary(pos ast.Pos, op string, left, right *ir.Instruction, dt1, dt2 symbols.DataType) (*ir.Instruction, error) {
	if serr := assertNumeric(op+" requires numeric operands", dt1, dt2); serr != nil {
		return nil, serr
	}
	var code ir.OpCode
	switch op {
	case "AND":
		code = ir.AND
	case "OR":
		code = ir.OR
	case "XOR":
		code = ir.XOR
	case "EQV":
		code = ir.EQV
	case "IMP":
		code = ir.IMP
	}
	result := l.tbl.AddTmp(upcast(dt1, dt2), nil)
	return l.emit(pos, code, left.Result(), right.Result(), result), nil
}
