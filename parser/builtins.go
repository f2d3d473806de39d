package parser

import "strings"

// builtinFuncs names every intrinsic function recognized directly by the
// front end, grounded on the full exitFunc* catalogue of math, string,
// conversion, array, and file-status builtins. A name in this set is
// lexed as a function call node rather than the ambiguous scalar/array/UDF
// variable reference.
var builtinFuncs = map[string]bool{
	"ABS": true, "SGN": true, "SQR": true, "EXP": true, "LOG": true,
	"LOG10": true, "LOG2": true, "SIN": true, "COS": true, "TAN": true,
	"ASIN": true, "ACOS": true, "ATN": true, "SINH": true, "COSH": true,
	"TANH": true, "TORAD": true, "TODEG": true, "FLOOR": true, "CEIL": true,
	"ROUND": true, "INT": true, "FIX": true, "CINT": true, "CLNG": true,
	"CSNG": true, "CDBL": true, "RND": true,
	"LEN": true, "ASC": true, "CHR$": true, "HEX$": true, "OCT$": true,
	"STR$": true, "VAL": true, "SPACE$": true, "STRING$": true,
	"LEFT$": true, "RIGHT$": true, "MID$": true, "INSTR": true,
	"LTRIM$": true, "RTRIM$": true, "LCASE$": true, "UCASE$": true,
	"CVI": true, "CVL": true, "CVS": true, "CVD": true,
	"MKI$": true, "MKL$": true, "MKS$": true, "MKD$": true,
	"MIN": true, "MAX": true, "PI": true, "EOF": true, "LOF": true,
	"LOC": true, "FREEFILE": true, "ARRAY1DMIN": true, "ARRAY1DMAX": true,
	"ARRAY1DSUM": true, "ARRAY1DMEAN": true, "ARRAYFIND": true,
	"ARRAY1DSTDEV": true, "UBOUND": true, "LBOUND": true,
}

func isBuiltinFunc(name string) bool {
	return builtinFuncs[strings.ToUpper(name)]
}
