package lower

import (
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

func assertNumeric(reason string, dts ...symbols.DataType) *SemanticError {
	for _, dt := range dts {
		if dt == symbols.String {
			return newSemanticError(DataTypeMismatch, dt.String(), reason)
		}
	}
	return nil
}

// upcast returns the promotion-lattice join of two numeric types. Callers
// must have already asserted both are numeric.
func upcast(a, b symbols.DataType) symbols.DataType {
	return symbols.Join(a, b)
}

// checkDataTypeMatch enforces the relational-operator rule: both operands
// string, or both numeric. Numeric/string mixing is rejected.
func checkDataTypeMatch(a, b symbols.DataType) *SemanticError {
	aStr, bStr := a == symbols.String, b == symbols.String
	if aStr != bStr {
		return newSemanticError(DataTypeMismatch, a.String()+" vs "+b.String(), "cannot compare string and numeric")
	}
	return nil
}

type arithFamily struct {
	i32, i64, f32, f64 ir.OpCode
}

var (
	addFamily = arithFamily{ir.ADDI32, ir.ADDI64, ir.ADDF32, ir.ADDF64}
	subFamily = arithFamily{ir.SUBI32, ir.SUBI64, ir.SUBF32, ir.SUBF64}
	mulFamily = arithFamily{ir.MULI32, ir.MULI64, ir.MULF32, ir.MULF64}
	expFamily = arithFamily{ir.EXPI32, ir.EXPI64, ir.EXPF32, ir.EXPF64}
)

func (f arithFamily) pick(dt symbols.DataType) (ir.OpCode, error) {
	switch dt {
	case symbols.Int32:
		return f.i32, nil
	case symbols.Int64:
		return f.i64, nil
	case symbols.Float32:
		return f.f32, nil
	case symbols.Float64:
		return f.f64, nil
	default:
		return 0, newInternalError("no arithmetic opcode for type %v", dt)
	}
}

type compareFamily struct {
	i32, i64, f32, f64, str ir.OpCode
}

var (
	eqFamily = compareFamily{ir.EQI32, ir.EQI64, ir.EQF32, ir.EQF64, ir.EQSTR}
	neFamily = compareFamily{ir.NEI32, ir.NEI64, ir.NEF32, ir.NEF64, ir.NESTR}
	ltFamily = compareFamily{ir.LTI32, ir.LTI64, ir.LTF32, ir.LTF64, ir.LTSTR}
	leFamily = compareFamily{ir.LEI32, ir.LEI64, ir.LEF32, ir.LEF64, ir.LESTR}
	gtFamily = compareFamily{ir.GTI32, ir.GTI64, ir.GTF32, ir.GTF64, ir.GTSTR}
	geFamily = compareFamily{ir.GEI32, ir.GEI64, ir.GEF32, ir.GEF64, ir.GESTR}
)

// pick chooses the comparison opcode for a and b's types, already
// verified compatible by checkDataTypeMatch: if either side is a string
// both are, else the wider numeric type of the two decides the family,
// in the promotion order of symbols.Join (DOUBLE > FLOAT > INT64 >
// INT32).
func (f compareFamily) pick(a, b symbols.DataType) (ir.OpCode, error) {
	if a == symbols.String || b == symbols.String {
		return f.str, nil
	}
	switch upcast(a, b) {
	case symbols.Float64:
		return f.f64, nil
	case symbols.Int64:
		return f.i64, nil
	case symbols.Float32:
		return f.f32, nil
	case symbols.Int32:
		return f.i32, nil
	default:
		return 0, newInternalError("no comparison opcode for types %v/%v", a, b)
	}
}
