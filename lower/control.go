package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

// lowerIf implements spec.md §4.3's IF lowering for both the single-line
// and multi-line BEGIN/END IF forms, unified into one label sequence
// since the parse tree has already fully nested either shape by the time
// lowering sees it:
//
//	GOTO_LABEL_IF cond, L_then
//	GOTO_LABEL L_before_else (or L_after_then if there is no ELSE)
//	LABEL L_then
//	<then statements>
//	GOTO_LABEL L_after_else (or L_after_then if there is no ELSE)
//	LABEL L_after_then
//	[LABEL L_before_else
//	 <else statements>
//	 LABEL L_after_else]
func (l *Lowerer) lowerIf(stmt *ast.IfStmt) error {
	cond, err := l.lowerExpr(stmt.Cond)
	if err != nil {
		return err
	}

	thenStmts, elseStmts := stmt.Then, stmt.Else
	hasElse := len(stmt.Else) > 0
	if stmt.Begin {
		thenStmts, elseStmts = stmt.ThenBlock, stmt.ElseBlock
		hasElse = stmt.ElseBlock != nil
	}

	gotoTrue := l.emit(stmt.Pos, ir.GOTO_LABEL_IF, cond.Result(), symbols.NULLID, symbols.NULLID)
	gotoFalse := l.emit(stmt.Pos, ir.GOTO_LABEL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	labelThen := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoTrue.PatchOp2(labelThen.Op1())

	for _, s := range thenStmts {
		if err := l.lowerStatement(s); err != nil {
			return err
		}
	}

	gotoAfterThen := l.emit(stmt.Pos, ir.GOTO_LABEL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	labelAfterThen := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)

	if !hasElse {
		gotoFalse.PatchOp1(labelAfterThen.Op1())
		gotoAfterThen.PatchOp1(labelAfterThen.Op1())
		return nil
	}

	labelBeforeElse := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	for _, s := range elseStmts {
		if err := l.lowerStatement(s); err != nil {
			return err
		}
	}
	labelAfterElse := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoFalse.PatchOp1(labelBeforeElse.Op1())
	gotoAfterThen.PatchOp1(labelAfterElse.Op1())
	return nil
}

// lowerWhile implements WHILE/WEND: test-at-top with a NOT-guarded exit.
func (l *Lowerer) lowerWhile(stmt *ast.WhileStmt) error {
	labelTop := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)

	cond, err := l.lowerExpr(stmt.Cond)
	if err != nil {
		return err
	}
	if serr := assertNumeric("WHILE condition must be numeric", l.tbl.DataTypeOf(cond.Result())); serr != nil {
		return serr
	}
	notCond := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ir.NOT, cond.Result(), symbols.NULLID, notCond)
	gotoExit := l.emit(stmt.Pos, ir.GOTO_LABEL_IF, notCond, symbols.NULLID, symbols.NULLID)

	for _, s := range stmt.Body {
		if err := l.lowerStatement(s); err != nil {
			return err
		}
	}

	l.emit(stmt.Pos, ir.GOTO_LABEL, labelTop.Op1(), symbols.NULLID, symbols.NULLID)
	labelExit := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoExit.PatchOp2(labelExit.Op1())
	return nil
}

// lowerFor implements FOR/NEXT: init, an unconditional jump to the loop
// test, a step-application block, the body, and a compound continuation
// test allowing either ascending (step >= 0 && var <= end) or descending
// (step < 0 && var >= end) loops, grounded on the original implementation's
// exitForstmt/exitNextstmt sequence.
func (l *Lowerer) lowerFor(stmt *ast.ForStmt) error {
	varInstr, err := l.lowerLValue(stmt.Var)
	if err != nil {
		return err
	}
	varType := l.tbl.DataTypeOf(varInstr.Result())
	if serr := assertNumeric("FOR variable must be numeric", varType); serr != nil {
		return serr
	}

	fromInstr, err := l.lowerExpr(stmt.From)
	if err != nil {
		return err
	}
	toInstr, err := l.lowerExpr(stmt.To)
	if err != nil {
		return err
	}
	if serr := assertNumeric("FOR init must be numeric", l.tbl.DataTypeOf(fromInstr.Result())); serr != nil {
		return serr
	}
	if serr := assertNumeric("FOR end must be numeric", l.tbl.DataTypeOf(toInstr.Result())); serr != nil {
		return serr
	}

	var stepResult int
	if stmt.Step != nil {
		s, err := l.lowerExpr(stmt.Step)
		if err != nil {
			return err
		}
		if serr := assertNumeric("FOR step must be numeric", l.tbl.DataTypeOf(s.Result())); serr != nil {
			return serr
		}
		tmp := l.tbl.AddTmpCompatibleWith(s.Result())
		l.emit(stmt.Pos, ir.COPY, tmp, s.Result(), tmp)
		stepResult = tmp
	} else {
		tmp := l.tbl.AddTmp(symbols.Int32, &symbols.Literal{Type: symbols.Int32, I32: 1})
		l.emit(stmt.Pos, ir.VALUE, tmp, symbols.NULLID, tmp)
		stepResult = tmp
	}

	l.emit(stmt.Pos, ir.ASSIGN, varInstr.Result(), fromInstr.Result(), varInstr.Result())

	tmpEnd := l.tbl.AddTmpCompatibleWith(toInstr.Result())
	l.emit(stmt.Pos, ir.ASSIGN, tmpEnd, toInstr.Result(), tmpEnd)

	gotoCheck := l.emit(stmt.Pos, ir.GOTO_LABEL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	labelApplyStep := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)

	addOp, err := addFamily.pick(varType)
	if err != nil {
		return err
	}
	tmpAdd := l.tbl.AddTmpCompatibleWith(varInstr.Result())
	l.emit(stmt.Pos, addOp, varInstr.Result(), stepResult, tmpAdd)
	l.emit(stmt.Pos, ir.ASSIGN, varInstr.Result(), tmpAdd, varInstr.Result())

	labelCheck := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoCheck.PatchOp1(labelCheck.Op1())

	zero := l.tbl.AddTmp(symbols.Int32, &symbols.Literal{Type: symbols.Int32, I32: 0})
	stepType := l.tbl.DataTypeOf(stepResult)

	geOp, err := geFamily.pick(stepType, symbols.Int32)
	if err != nil {
		return err
	}
	stepNonNeg := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, geOp, stepResult, zero, stepNonNeg)

	leOp, err := leFamily.pick(varType, l.tbl.DataTypeOf(tmpEnd))
	if err != nil {
		return err
	}
	varLeEnd := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, leOp, varInstr.Result(), tmpEnd, varLeEnd)

	ascendingOK := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ir.AND, stepNonNeg, varLeEnd, ascendingOK)

	ltOp, err := ltFamily.pick(stepType, symbols.Int32)
	if err != nil {
		return err
	}
	stepNeg := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ltOp, stepResult, zero, stepNeg)

	geVarOp, err := geFamily.pick(varType, l.tbl.DataTypeOf(tmpEnd))
	if err != nil {
		return err
	}
	varGeEnd := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, geVarOp, varInstr.Result(), tmpEnd, varGeEnd)

	descendingOK := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ir.AND, stepNeg, varGeEnd, descendingOK)

	continueLoop := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ir.OR, ascendingOK, descendingOK, continueLoop)

	notContinue := l.tbl.AddTmp(symbols.Int64, nil)
	l.emit(stmt.Pos, ir.NOT, continueLoop, symbols.NULLID, notContinue)
	gotoExit := l.emit(stmt.Pos, ir.GOTO_LABEL_IF, notContinue, symbols.NULLID, symbols.NULLID)

	for _, s := range stmt.Body {
		if err := l.lowerStatement(s); err != nil {
			return err
		}
	}

	if len(stmt.NextVars) > 0 {
		wantBare, _ := splitNameSuffix(stmt.Var.Name)
		gotBare, _ := splitNameSuffix(stmt.NextVars[0])
		if !strings.EqualFold(wantBare, gotBare) {
			return l.semanticErr(NextWithoutFor,
				fmt.Sprintf("NEXT %s does not match FOR %s", stmt.NextVars[0], stmt.Var.Name), stmt.NextVars[0])
		}
	}

	l.emit(stmt.Pos, ir.GOTO_LABEL, labelApplyStep.Op1(), symbols.NULLID, symbols.NULLID)
	labelExit := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoExit.PatchOp2(labelExit.Op1())
	return nil
}

// lowerGoto and lowerGosub resolve their target through the label
// namespace matching the front end's convention: a target consisting
// entirely of digits is a line number, otherwise it is a named label.
func targetLabelID(tbl *symbols.Table, target string) (int, ir.OpCode) {
	if n, err := strconv.Atoi(target); err == nil {
		return tbl.AddLineLabel(n), ir.GOTO_LINENUM
	}
	return tbl.AddNamedLabel(target), ir.GOTO_LABEL
}

func (l *Lowerer) lowerGoto(stmt *ast.GotoStmt) error {
	id, op := targetLabelID(l.tbl, stmt.Target)
	l.emit(stmt.Pos, op, id, symbols.NULLID, symbols.NULLID)
	return nil
}

// lowerGosub implements GOSUB: push a return label, jump to the target,
// and place the return label right after the jump so RETURN resumes here.
func (l *Lowerer) lowerGosub(stmt *ast.GosubStmt) error {
	pushRet := l.emit(stmt.Pos, ir.PUSH_RETLABEL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	id, op := targetLabelID(l.tbl, stmt.Target)
	l.emit(stmt.Pos, op, id, symbols.NULLID, symbols.NULLID)
	labelReturn := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	pushRet.PatchOp1(labelReturn.Op1())
	return nil
}

// lowerDefFn implements DEF FN: the declaration lowers to a skip-over
// jump, the function's entry label, a child declaration scope for its
// formal parameters, the (always single-expression, per the front end)
// body copied into the UDF's return slot, and a jump back to the caller.
// A call site created before this declaration is visited (lowerUDFCall
// having already allocated the UDF entry and its return-value temp) is
// completed here rather than created fresh.
func (l *Lowerer) lowerDefFn(stmt *ast.DefFnStmt) error {
	vn, err := l.resolveVariableName(stmt.Name)
	if err != nil {
		return err
	}

	var udf *symbols.UDF
	var gotoSkip *ir.Instruction
	_, aerr := l.tbl.AddVariableOrUDF(vn,
		func(n symbols.VariableName) symbols.Entry {
			return &symbols.UDF{Name: stmt.Name, ReturnType: n.Type, ReturnID: symbols.NULLID, StartLabel: symbols.NULLID}
		},
		func(id int, e symbols.Entry) error {
			u, ok := e.(*symbols.UDF)
			if !ok {
				return l.internalErr("expected UDF entry for %s, got %v", stmt.Name, e.Kind())
			}
			udf = u
			if udf.ReturnID == symbols.NULLID {
				udf.ReturnID = l.tbl.AddTmp(udf.ReturnType, nil)
			}
			gotoSkip = l.emit(stmt.Pos, ir.GOTO_LABEL, symbols.NULLID, symbols.NULLID, symbols.NULLID)
			startLabel := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
			udf.StartLabel = startLabel.Op1()
			l.tbl.PushDeclarationScope(id)
			l.curUDF = id
			return nil
		})
	if aerr != nil {
		return aerr
	}

	for _, raw := range stmt.Params {
		pvn, err := l.resolveVariableName(raw)
		if err != nil {
			return err
		}
		pid, err := l.tbl.AddParam(pvn)
		if err != nil {
			return err
		}
		l.emit(stmt.Pos, ir.VARIABLE, pid, symbols.NULLID, pid)
		udf.Params = append(udf.Params, pid)
	}

	if len(stmt.Body) != 1 {
		return l.internalErr("DEF FN body must be a single assignment, got %d statement(s)", len(stmt.Body))
	}
	letStmt, ok := stmt.Body[0].(*ast.LetStmt)
	if !ok {
		return l.internalErr("DEF FN body must be a LET, got %T", stmt.Body[0])
	}

	bodyInstr, err := l.lowerExpr(letStmt.Value)
	if err != nil {
		return err
	}
	bodyType := l.tbl.DataTypeOf(bodyInstr.Result())
	returnIsString := udf.ReturnType == symbols.String
	if (bodyType == symbols.String) != returnIsString {
		return l.semanticErr(DataTypeMismatch, "DEF FN body type does not match declared return type", stmt.Name)
	}
	l.emit(stmt.Pos, ir.COPY, udf.ReturnID, bodyInstr.Result(), udf.ReturnID)

	l.tbl.PopScope()
	l.curUDF = symbols.NULLID
	l.emit(stmt.Pos, ir.GOTO_CALLER, symbols.NULLID, symbols.NULLID, symbols.NULLID)
	labelSkip := l.emit(stmt.Pos, ir.LABEL, l.tbl.AddGotoTarget(), symbols.NULLID, symbols.NULLID)
	gotoSkip.PatchOp1(labelSkip.Op1())
	return nil
}
