// Package ir defines the linear, typed, three-address intermediate
// representation the lowering pass emits and a downstream interpreter
// executes.
package ir

// OpCode identifies the operation an Instruction performs. The full set
// below is the contract the interpreter (out of scope for this module)
// must implement; lowering only ever emits members of this set.
type OpCode int

const (
	// Data move.
	VARIABLE OpCode = iota
	VALUE
	ASSIGN
	COPY

	// Array.
	RESET_ARRAY_IDX
	SET_ARRAY_IDX
	ARRAYREF

	// Arithmetic, specialised per upcast result type.
	ADDI32
	ADDI64
	ADDF32
	ADDF64
	SUBI32
	SUBI64
	SUBF32
	SUBF64
	MULI32
	MULI64
	MULF32
	MULF64
	EXPI32
	EXPI64
	EXPF32
	EXPF64
	IDIV
	FDIV
	MOD
	UNARY_MINUS
	CONCAT

	// Comparison, result type is always Int64 (0/-1 truth).
	EQI32
	NEI32
	LTI32
	LEI32
	GTI32
	GEI32
	EQI64
	NEI64
	LTI64
	LEI64
	GTI64
	GEI64
	EQF32
	NEF32
	LTF32
	LEF32
	GTF32
	GEF32
	EQF64
	NEF64
	LTF64
	LEF64
	GTF64
	GEF64
	EQSTR
	NESTR
	LTSTR
	LESTR
	GTSTR
	GESTR

	// Logical/bitwise, operate on the integer representation.
	NOT
	AND
	OR
	XOR
	EQV
	IMP
	LEFTSHIFT
	RIGHTSHIFT

	// Control flow.
	GOTO_LINENUM
	GOTO_LABEL
	GOTO_LABEL_IF
	GOTO_CALLER
	LABEL
	PUSH_RT_SCOPE
	POP_RT_SCOPE
	PUSH_RETLABEL
	RETURN
	END

	// Parameter passing side-channel.
	PARAM1
	PARAM2

	// Math/trig/conversion functions.
	ABS
	SGN
	SQR
	EEXP
	LOG
	LOG10
	LOG2
	SIN
	COS
	TAN
	ASIN
	ACOS
	ATN
	SINH
	COSH
	TANH
	TORAD
	TODEG
	FLOOR
	CEIL
	ROUND
	INTFN
	FIX
	CINT
	CLNG
	CSNG
	CDBL
	SGNCONST
	RND
	E_CONST
	PI_CONST
	MINFN
	MAXFN

	// String functions.
	LEN
	ASC
	CHRDLR
	HEXDLR
	OCTDLR
	LEFTDLR
	RIGHTDLR
	MIDDLR
	INSTRFN
	STRDLR
	VAL
	SPACEDLR
	STRINGDLR
	LTRIMDLR
	RTRIMDLR
	LCASEDLR
	UCASEDLR
	ENVIRONDLR
	INKEYDLR
	INPUTDLR

	// Binary encode/decode.
	CVI
	CVL
	CVS
	CVD
	MKIDLR
	MKLDLR
	MKSDLR
	MKDDLR

	// Array statistics and bulk operations.
	ARRAY1DMIN
	ARRAY1DMAX
	ARRAY1DMEAN
	ARRAY1DSUM
	ARRAY1DSTD
	ARRAY1DMEDIAN
	ARRAY1DPCT
	ARRAY1DSORT
	ARRAY1DBINSEARCH
	ARRAY1DCOPY
	ARRAY1DFIND
	ARRAYCOPY
	ARRAYFILL
	ARRAY2DSHIFTHOR
	ARRAY2DSHIFTVER
	UBOUND
	LBOUND

	// File I/O statement family.
	OPEN
	CLOSE
	CLOSE_ALL
	FIELD
	LSET
	RSET
	GET
	PUT
	MIDDLRSTMT
	LOC
	LOF
	EOF
	FREEFILE
	INPUT
	INPUTHASH
	LINEINPUT
	LINEINPUTHASH
	WRITE
	WRITEHASH
	READ
	RESTORE
	DATA
	PRINT
	PRINTUSING
	FLUSH

	// Console/graphics/sound statement shapes (no runtime; opcode shape
	// only, emitted when lowering is constructed with graphics enabled).
	SCREEN
	REPAINT
	CLS
	COLOR
	LINE
	CIRCLE
	PSET
	PAINT
	DRAW
	DRAWSTR
	FONT
	GPUT
	GGET
	LOADIMG
	SAVEIMG
	HSB2RGB
	BEEP
	SLEEP
	LOADWAV
	PLAYWAV
	STOPWAV
	LOOPWAV

	// Dictionary/set functions.
	DICT_CREATE
	DICT_PUT
	DICT_GET
	DICT_CONTAINSKEY
	DICT_CLEAR
	DICT_SIZE
	SET_CREATE
	SET_ADD
	SET_CONTAINS
	SET_CLEAR
	SET_SIZE

	// Miscellaneous statements.
	RANDOMIZE
	RANDOMIZE_TIMER
	SWAP
	REF
	COMMENT
)

var opcodeNames = map[OpCode]string{
	VARIABLE: "VARIABLE", VALUE: "VALUE", ASSIGN: "ASSIGN", COPY: "COPY",
	RESET_ARRAY_IDX: "RESET_ARRAY_IDX", SET_ARRAY_IDX: "SET_ARRAY_IDX", ARRAYREF: "ARRAYREF",
	ADDI32: "ADDI32", ADDI64: "ADDI64", ADDF32: "ADDF32", ADDF64: "ADDF64",
	SUBI32: "SUBI32", SUBI64: "SUBI64", SUBF32: "SUBF32", SUBF64: "SUBF64",
	MULI32: "MULI32", MULI64: "MULI64", MULF32: "MULF32", MULF64: "MULF64",
	EXPI32: "EXPI32", EXPI64: "EXPI64", EXPF32: "EXPF32", EXPF64: "EXPF64",
	IDIV: "IDIV", FDIV: "FDIV", MOD: "MOD", UNARY_MINUS: "UNARY_MINUS", CONCAT: "CONCAT",
	EQI32: "EQI32", NEI32: "NEI32", LTI32: "LTI32", LEI32: "LEI32", GTI32: "GTI32", GEI32: "GEI32",
	EQI64: "EQI64", NEI64: "NEI64", LTI64: "LTI64", LEI64: "LEI64", GTI64: "GTI64", GEI64: "GEI64",
	EQF32: "EQF32", NEF32: "NEF32", LTF32: "LTF32", LEF32: "LEF32", GTF32: "GTF32", GEF32: "GEF32",
	EQF64: "EQF64", NEF64: "NEF64", LTF64: "LTF64", LEF64: "LEF64", GTF64: "GTF64", GEF64: "GEF64",
	EQSTR: "EQSTR", NESTR: "NESTR", LTSTR: "LTSTR", LESTR: "LESTR", GTSTR: "GTSTR", GESTR: "GESTR",
	NOT: "NOT", AND: "AND", OR: "OR", XOR: "XOR", EQV: "EQV", IMP: "IMP",
	LEFTSHIFT: "LEFTSHIFT", RIGHTSHIFT: "RIGHTSHIFT",
	GOTO_LINENUM: "GOTO_LINENUM", GOTO_LABEL: "GOTO_LABEL", GOTO_LABEL_IF: "GOTO_LABEL_IF",
	GOTO_CALLER: "GOTO_CALLER", LABEL: "LABEL", PUSH_RT_SCOPE: "PUSH_RT_SCOPE",
	POP_RT_SCOPE: "POP_RT_SCOPE", PUSH_RETLABEL: "PUSH_RETLABEL", RETURN: "RETURN", END: "END",
	PARAM1: "PARAM1", PARAM2: "PARAM2",
	ABS: "ABS", SGN: "SGN", SQR: "SQR", EEXP: "EEXP", LOG: "LOG", LOG10: "LOG10", LOG2: "LOG2",
	SIN: "SIN", COS: "COS", TAN: "TAN", ASIN: "ASIN", ACOS: "ACOS", ATN: "ATN",
	SINH: "SINH", COSH: "COSH", TANH: "TANH", TORAD: "TORAD", TODEG: "TODEG",
	FLOOR: "FLOOR", CEIL: "CEIL", ROUND: "ROUND", INTFN: "INT", FIX: "FIX",
	CINT: "CINT", CLNG: "CLNG", CSNG: "CSNG", CDBL: "CDBL", SGNCONST: "SGNCONST",
	RND: "RND", E_CONST: "E", PI_CONST: "PI", MINFN: "MIN", MAXFN: "MAX",
	LEN: "LEN", ASC: "ASC", CHRDLR: "CHR$", HEXDLR: "HEX$", OCTDLR: "OCT$",
	LEFTDLR: "LEFT$", RIGHTDLR: "RIGHT$", MIDDLR: "MID$", INSTRFN: "INSTR",
	STRDLR: "STR$", VAL: "VAL", SPACEDLR: "SPACE$", STRINGDLR: "STRING$",
	LTRIMDLR: "LTRIM$", RTRIMDLR: "RTRIM$", LCASEDLR: "LCASE$", UCASEDLR: "UCASE$",
	ENVIRONDLR: "ENVIRON$", INKEYDLR: "INKEY$", INPUTDLR: "INPUT$",
	CVI: "CVI", CVL: "CVL", CVS: "CVS", CVD: "CVD",
	MKIDLR: "MKI$", MKLDLR: "MKL$", MKSDLR: "MKS$", MKDDLR: "MKD$",
	ARRAY1DMIN: "ARRAY1DMIN", ARRAY1DMAX: "ARRAY1DMAX", ARRAY1DMEAN: "ARRAY1DMEAN",
	ARRAY1DSUM: "ARRAY1DSUM", ARRAY1DSTD: "ARRAY1DSTD", ARRAY1DMEDIAN: "ARRAY1DMEDIAN",
	ARRAY1DPCT: "ARRAY1DPCT", ARRAY1DSORT: "ARRAY1DSORT", ARRAY1DBINSEARCH: "ARRAY1DBINSEARCH",
	ARRAY1DCOPY: "ARRAY1DCOPY", ARRAY1DFIND: "ARRAY1DFIND", ARRAYCOPY: "ARRAYCOPY",
	ARRAYFILL: "ARRAYFILL", ARRAY2DSHIFTHOR: "ARRAY2DSHIFTHOR", ARRAY2DSHIFTVER: "ARRAY2DSHIFTVER",
	UBOUND: "UBOUND", LBOUND: "LBOUND",
	OPEN: "OPEN", CLOSE: "CLOSE", CLOSE_ALL: "CLOSE_ALL", FIELD: "FIELD",
	LSET: "LSET", RSET: "RSET", GET: "GET", PUT: "PUT", MIDDLRSTMT: "MID$STMT",
	LOC: "LOC", LOF: "LOF", EOF: "EOF", FREEFILE: "FREEFILE",
	INPUT: "INPUT", INPUTHASH: "INPUT#", LINEINPUT: "LINEINPUT", LINEINPUTHASH: "LINEINPUT#",
	WRITE: "WRITE", WRITEHASH: "WRITE#", READ: "READ", RESTORE: "RESTORE", DATA: "DATA",
	PRINT: "PRINT", PRINTUSING: "PRINTUSING", FLUSH: "FLUSH",
	SCREEN: "SCREEN", REPAINT: "REPAINT", CLS: "CLS", COLOR: "COLOR", LINE: "LINE",
	CIRCLE: "CIRCLE", PSET: "PSET", PAINT: "PAINT", DRAW: "DRAW", DRAWSTR: "DRAWSTR",
	FONT: "FONT", GPUT: "GPUT", GGET: "GGET", LOADIMG: "LOADIMG", SAVEIMG: "SAVEIMG",
	HSB2RGB: "HSB2RGB", BEEP: "BEEP", SLEEP: "SLEEP",
	LOADWAV: "LOADWAV", PLAYWAV: "PLAYWAV", STOPWAV: "STOPWAV", LOOPWAV: "LOOPWAV",
	DICT_CREATE: "DICT_CREATE", DICT_PUT: "DICT_PUT", DICT_GET: "DICT_GET",
	DICT_CONTAINSKEY: "DICT_CONTAINSKEY", DICT_CLEAR: "DICT_CLEAR", DICT_SIZE: "DICT_SIZE",
	SET_CREATE: "SET_CREATE", SET_ADD: "SET_ADD", SET_CONTAINS: "SET_CONTAINS",
	SET_CLEAR: "SET_CLEAR", SET_SIZE: "SET_SIZE",
	RANDOMIZE: "RANDOMIZE", RANDOMIZE_TIMER: "RANDOMIZE_TIMER", SWAP: "SWAP",
	REF: "REF", COMMENT: "COMMENT",
}

// String renders the opcode's mnemonic, matching the names used in error
// messages and the IR pretty-printer.
func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP(?)"
}
