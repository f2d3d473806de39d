package lower

import (
	"strings"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

// resultRule decides a builtin function's result DataType from its
// argument types once lowered.
type resultRule int

const (
	fixedResult resultRule = iota
	sameAsFirstArg
)

type funcSpec struct {
	op             ir.OpCode
	rule           resultRule
	fixed          symbols.DataType
	numericArgs    bool // every argument must be numeric
	stringFirstArg bool // Args[0] must be String
}

// funcTable grounds every intrinsic in the front end's builtin-function
// set (parser/builtins.go) to an opcode and result-typing rule, following
// classic BASIC conventions: trig/log/sqrt/exp always widen to DOUBLE,
// ABS/INT/FIX/ROUND/CEIL/FLOOR/MIN/MAX preserve (the join of) their
// argument type, and the CINT/CLNG/CSNG/CDBL family forces its named type.
var funcTable = map[string]funcSpec{
	"ABS":   {op: ir.ABS, rule: sameAsFirstArg, numericArgs: true},
	"SGN":   {op: ir.SGN, rule: fixedResult, fixed: symbols.Int32, numericArgs: true},
	"SQR":   {op: ir.SQR, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"EXP":   {op: ir.EEXP, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"LOG":   {op: ir.LOG, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"LOG10": {op: ir.LOG10, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"LOG2":  {op: ir.LOG2, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"SIN":   {op: ir.SIN, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"COS":   {op: ir.COS, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"TAN":   {op: ir.TAN, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"ASIN":  {op: ir.ASIN, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"ACOS":  {op: ir.ACOS, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"ATN":   {op: ir.ATN, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"SINH":  {op: ir.SINH, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"COSH":  {op: ir.COSH, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"TANH":  {op: ir.TANH, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"TORAD": {op: ir.TORAD, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"TODEG": {op: ir.TODEG, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"FLOOR": {op: ir.FLOOR, rule: sameAsFirstArg, numericArgs: true},
	"CEIL":  {op: ir.CEIL, rule: sameAsFirstArg, numericArgs: true},
	"ROUND": {op: ir.ROUND, rule: sameAsFirstArg, numericArgs: true},
	"INT":   {op: ir.INTFN, rule: sameAsFirstArg, numericArgs: true},
	"FIX":   {op: ir.FIX, rule: sameAsFirstArg, numericArgs: true},
	"CINT":  {op: ir.CINT, rule: fixedResult, fixed: symbols.Int32, numericArgs: true},
	"CLNG":  {op: ir.CLNG, rule: fixedResult, fixed: symbols.Int64, numericArgs: true},
	"CSNG":  {op: ir.CSNG, rule: fixedResult, fixed: symbols.Float32, numericArgs: true},
	"CDBL":  {op: ir.CDBL, rule: fixedResult, fixed: symbols.Float64, numericArgs: true},
	"RND":   {op: ir.RND, rule: fixedResult, fixed: symbols.Float64},
	"PI":    {op: ir.PI_CONST, rule: fixedResult, fixed: symbols.Float64},

	"LEN":  {op: ir.LEN, rule: fixedResult, fixed: symbols.Int32, stringFirstArg: true},
	"ASC":  {op: ir.ASC, rule: fixedResult, fixed: symbols.Int32, stringFirstArg: true},
	"CHR$": {op: ir.CHRDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"HEX$": {op: ir.HEXDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"OCT$": {op: ir.OCTDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"STR$": {op: ir.STRDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"VAL":  {op: ir.VAL, rule: fixedResult, fixed: symbols.Float64, stringFirstArg: true},

	"SPACE$":  {op: ir.SPACEDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"STRING$": {op: ir.STRINGDLR, rule: fixedResult, fixed: symbols.String},
	"LEFT$":   {op: ir.LEFTDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"RIGHT$":  {op: ir.RIGHTDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"MID$":    {op: ir.MIDDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"INSTR":   {op: ir.INSTRFN, rule: fixedResult, fixed: symbols.Int32},
	"LTRIM$":  {op: ir.LTRIMDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"RTRIM$":  {op: ir.RTRIMDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"LCASE$":  {op: ir.LCASEDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},
	"UCASE$":  {op: ir.UCASEDLR, rule: fixedResult, fixed: symbols.String, stringFirstArg: true},

	"CVI": {op: ir.CVI, rule: fixedResult, fixed: symbols.Int32, stringFirstArg: true},
	"CVL": {op: ir.CVL, rule: fixedResult, fixed: symbols.Int64, stringFirstArg: true},
	"CVS": {op: ir.CVS, rule: fixedResult, fixed: symbols.Float32, stringFirstArg: true},
	"CVD": {op: ir.CVD, rule: fixedResult, fixed: symbols.Float64, stringFirstArg: true},

	"MKI$": {op: ir.MKIDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"MKL$": {op: ir.MKLDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"MKS$": {op: ir.MKSDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},
	"MKD$": {op: ir.MKDDLR, rule: fixedResult, fixed: symbols.String, numericArgs: true},

	"MIN": {op: ir.MINFN, rule: sameAsFirstArg, numericArgs: true},
	"MAX": {op: ir.MAXFN, rule: sameAsFirstArg, numericArgs: true},

	"EOF":      {op: ir.EOF, rule: fixedResult, fixed: symbols.Int32, numericArgs: true},
	"LOF":      {op: ir.LOF, rule: fixedResult, fixed: symbols.Int32, numericArgs: true},
	"LOC":      {op: ir.LOC, rule: fixedResult, fixed: symbols.Int32, numericArgs: true},
	"FREEFILE": {op: ir.FREEFILE, rule: fixedResult, fixed: symbols.Int32},

	"ARRAY1DMIN":   {op: ir.ARRAY1DMIN, rule: fixedResult, fixed: symbols.Float64},
	"ARRAY1DMAX":   {op: ir.ARRAY1DMAX, rule: fixedResult, fixed: symbols.Float64},
	"ARRAY1DSUM":   {op: ir.ARRAY1DSUM, rule: fixedResult, fixed: symbols.Float64},
	"ARRAY1DMEAN":  {op: ir.ARRAY1DMEAN, rule: fixedResult, fixed: symbols.Float64},
	"ARRAY1DSTDEV": {op: ir.ARRAY1DSTD, rule: fixedResult, fixed: symbols.Float64},
	"ARRAYFIND":    {op: ir.ARRAY1DFIND, rule: fixedResult, fixed: symbols.Int32},
	"UBOUND":       {op: ir.UBOUND, rule: fixedResult, fixed: symbols.Int32},
	"LBOUND":       {op: ir.LBOUND, rule: fixedResult, fixed: symbols.Int32},
}

// lowerFuncCall lowers an intrinsic function invocation: every argument is
// lowered left to right, the leading ones passed as PARAM2 pairs when there
// are more than two, and the result type is decided by the function's
// resultRule.
func (l *Lowerer) lowerFuncCall(v *ast.FuncCall) (*ir.Instruction, error) {
	name := strings.ToUpper(v.Name)
	spec, ok := funcTable[name]
	if !ok {
		return nil, l.internalErr("unknown builtin function %q", v.Name)
	}

	args := make([]*ir.Instruction, len(v.Args))
	for i, a := range v.Args {
		instr, err := l.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = instr
	}

	if spec.numericArgs {
		for _, a := range args {
			if serr := assertNumeric(name+" requires numeric arguments", l.tbl.DataTypeOf(a.Result())); serr != nil {
				return nil, serr
			}
		}
	}
	if spec.stringFirstArg && len(args) > 0 && l.tbl.DataTypeOf(args[0].Result()) != symbols.String {
		return nil, l.semanticErr(DataTypeMismatch, name+" requires a string first argument", v.Name)
	}

	ids := make([]int, len(args))
	for i, a := range args {
		ids[i] = a.Result()
	}
	op1, op2 := l.pushParams(v.Pos, ids)

	var resultType symbols.DataType
	switch spec.rule {
	case fixedResult:
		resultType = spec.fixed
	case sameAsFirstArg:
		if len(args) == 0 {
			resultType = symbols.Float64
		} else {
			resultType = l.tbl.DataTypeOf(args[0].Result())
			for _, a := range args[1:] {
				resultType = upcast(resultType, l.tbl.DataTypeOf(a.Result()))
			}
		}
	}

	result := l.tbl.AddTmp(resultType, nil)
	instr := l.emit(v.Pos, spec.op, op1, op2, result)
	return l.bindResult(v, instr), nil
}

// callOpcodes grounds the statement-form intrinsics — array bulk
// operations, dictionary/set mutation, and (behind the graphics flag)
// console/graphics/sound primitives — reachable only through a generic
// CALL, since the front end's expression-position builtin table never
// names them.
var callOpcodes = map[string]ir.OpCode{
	"ARRAYFILL":       ir.ARRAYFILL,
	"ARRAYCOPY":       ir.ARRAYCOPY,
	"ARRAY1DCOPY":     ir.ARRAY1DCOPY,
	"ARRAY1DSORT":     ir.ARRAY1DSORT,
	"ARRAY2DSHIFTHOR": ir.ARRAY2DSHIFTHOR,
	"ARRAY2DSHIFTVER": ir.ARRAY2DSHIFTVER,

	"DICT_CREATE":      ir.DICT_CREATE,
	"DICT_PUT":         ir.DICT_PUT,
	"DICT_CLEAR":       ir.DICT_CLEAR,
	"DICT_CONTAINSKEY": ir.DICT_CONTAINSKEY,
	"SET_CREATE":       ir.SET_CREATE,
	"SET_ADD":          ir.SET_ADD,
	"SET_CLEAR":        ir.SET_CLEAR,

	"SCREEN":   ir.SCREEN,
	"REPAINT":  ir.REPAINT,
	"CLS":      ir.CLS,
	"COLOR":    ir.COLOR,
	"LINE":     ir.LINE,
	"CIRCLE":   ir.CIRCLE,
	"PSET":     ir.PSET,
	"PAINT":    ir.PAINT,
	"DRAW":     ir.DRAW,
	"DRAWSTR":  ir.DRAWSTR,
	"FONT":     ir.FONT,
	"GPUT":     ir.GPUT,
	"GGET":     ir.GGET,
	"LOADIMG":  ir.LOADIMG,
	"SAVEIMG":  ir.SAVEIMG,
	"BEEP":     ir.BEEP,
	"SLEEP":    ir.SLEEP,
	"LOADWAV":  ir.LOADWAV,
	"PLAYWAV":  ir.PLAYWAV,
	"STOPWAV":  ir.STOPWAV,
	"LOOPWAV":  ir.LOOPWAV,
}

// graphicsOpcodes names the subset of callOpcodes gated by the Lowerer's
// graphics flag: console/graphics/sound primitives require a runtime that
// actually owns a display and audio device.
var graphicsOpcodes = map[ir.OpCode]bool{
	ir.SCREEN: true, ir.REPAINT: true, ir.CLS: true, ir.COLOR: true,
	ir.LINE: true, ir.CIRCLE: true, ir.PSET: true, ir.PAINT: true,
	ir.DRAW: true, ir.DRAWSTR: true, ir.FONT: true, ir.GPUT: true,
	ir.GGET: true, ir.LOADIMG: true, ir.SAVEIMG: true,
	ir.BEEP: true, ir.SLEEP: true, ir.LOADWAV: true, ir.PLAYWAV: true,
	ir.STOPWAV: true, ir.LOOPWAV: true,
}

func (l *Lowerer) lowerCall(st *ast.CallStmt) error {
	name := strings.ToUpper(st.Name)
	opcode, ok := callOpcodes[name]
	if !ok {
		return l.internalErr("unknown call-statement intrinsic %q", st.Name)
	}
	if graphicsOpcodes[opcode] && !l.graphics {
		return l.semanticErr(BadArgument, "console/graphics/sound statements require graphics support", st.Name)
	}

	ids := make([]int, len(st.Args))
	for i, a := range st.Args {
		// A bare array name stands for the whole array (CALL ARRAYCOPY(B%, A%)).
		if ref, ok := a.(*ast.VarRef); ok && len(ref.Args) == 0 && !isUDFName(ref.Name) {
			vn, err := l.resolveVariableName(ref.Name)
			if err != nil {
				return err
			}
			id, err := l.tbl.AddVariableOrUDF(vn,
				func(n symbols.VariableName) symbols.Entry { return &symbols.Variable{Name: n} },
				nil)
			if err != nil {
				return err
			}
			ids[i] = l.emit(st.Pos, ir.VARIABLE, id, symbols.NULLID, id).Result()
			continue
		}
		instr, err := l.lowerExpr(a)
		if err != nil {
			return err
		}
		ids[i] = instr.Result()
	}
	op1, op2 := l.pushParams(st.Pos, ids)
	l.emit(st.Pos, opcode, op1, op2, symbols.NULLID)
	return nil
}
