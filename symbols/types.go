// Package symbols implements the compiler's symbol table: the owner of
// every named or compiler-generated entity a BASIC program can reference —
// variables, array aliases, user-defined functions, temporaries, and
// branch labels — each addressed by a dense integer id.
package symbols

import "fmt"

// DataType is one of the five BASIC value types. The four numeric types
// form a promotion lattice ordered by their declaration order below;
// String is disjoint from all of them.
type DataType int

const (
	Int32 DataType = iota
	Int64
	Float32
	Float64
	String
)

func (dt DataType) String() string {
	switch dt {
	case Int32:
		return "INTEGER"
	case Int64:
		return "LONG"
	case Float32:
		return "SINGLE"
	case Float64:
		return "DOUBLE"
	case String:
		return "STRING"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// IsNumeric reports whether dt participates in the promotion lattice.
func (dt DataType) IsNumeric() bool {
	return dt != String
}

// Join returns the promotion-lattice join of two numeric types: the wider
// of the two. Callers must not pass String.
func Join(a, b DataType) DataType {
	if a > b {
		return a
	}
	return b
}

// NULLID denotes the absence of an operand or result.
const NULLID = -1

// VariableName is the logical identity of a BASIC variable: its bare name
// (without any type sigil) paired with its resolved type. `A%` and `A!`
// are distinct VariableNames sharing the bare name "A".
type VariableName struct {
	Bare string
	Type DataType
}

// Kind discriminates the closed set of SymbolTable entry variants.
type Kind int

const (
	KindVariable Kind = iota
	KindArrayRef
	KindUDF
	KindTmp
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindArrayRef:
		return "ArrayRef"
	case KindUDF:
		return "UDF"
	case KindTmp:
		return "Tmp"
	case KindLabel:
		return "Label"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry is the closed sum type of everything the symbol table can hold.
// Consumers recover the concrete variant with a type switch, per the
// tagged-union design note this table follows instead of a class
// hierarchy.
type Entry interface {
	ID() int
	Kind() Kind
}

// Variable is scalar or array storage bound to a BASIC name and type.
// Rank is 0 for a scalar; Dims holds one inclusive upper bound per
// dimension once the array has been DIM'd (nil/empty until then).
type Variable struct {
	id   int
	Name VariableName
	Rank int
	Dims []int
}

func (v *Variable) ID() int   { return v.id }
func (v *Variable) Kind() Kind { return KindVariable }

// ArrayRef is an l-value alias bound to a Variable plus an index vector
// accumulated by RESET_ARRAY_IDX/SET_ARRAY_IDX instructions.
type ArrayRef struct {
	id         int
	VariableID int
}

func (a *ArrayRef) ID() int   { return a.id }
func (a *ArrayRef) Kind() Kind { return KindArrayRef }

// UDF is a user-defined function: its ordered formal parameter ids, its
// return-value storage id, and the id of the label its body starts at
// (assigned by the lowering pass once known).
type UDF struct {
	id         int
	Name       string
	Params     []int
	ReturnID   int
	ReturnType DataType
	StartLabel int
}

func (u *UDF) ID() int   { return u.id }
func (u *UDF) Kind() Kind { return KindUDF }

// Tmp is compiler-generated anonymous storage of a fixed type, optionally
// pre-initialised with a literal value (e.g. the implicit STEP of 1 in a
// FOR loop without one).
type Tmp struct {
	id   int
	Type DataType
	Init *Literal
}

func (t *Tmp) ID() int   { return t.id }
func (t *Tmp) Kind() Kind { return KindTmp }

// Literal is a compile-time-known scalar value used to preinitialise a
// Tmp; exactly one of the fields is meaningful, selected by Type.
type Literal struct {
	Type DataType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
	Str  string
}

// Label is a branch target: numbered (BASIC line number), named (string
// label), or synthetic (an anonymous goto-target allocated by lowering).
type Label struct {
	id         int
	Name       string
	LineNumber int
	Synthetic  bool
}

func (l *Label) ID() int   { return l.id }
func (l *Label) Kind() Kind { return KindLabel }
