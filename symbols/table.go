package symbols

import "fmt"

// scope tracks the formal parameters declared while lowering is emitting
// the body of a single UDF. Parameter names shadow globals for the
// duration of the scope and become invisible once it is popped; the
// entries themselves are never removed from the table, only the name
// binding used to resolve future VARIABLE references.
type scope struct {
	udfID  int
	params map[VariableName]int
}

// Table owns every SymbolEntry created while lowering a single program.
// It is not safe for concurrent use.
type Table struct {
	entries []Entry

	globals map[VariableName]int
	lines   map[int]int
	labels  map[string]int

	defaultTypes [26]DataType

	scopes []scope
}

// New returns an empty table with BASIC's standard default-type table:
// every letter defaults to Float64 until a DEFINT/DEFLNG/DEFSNG/DEFDBL/
// DEFSTR statement narrows a range.
func New() *Table {
	t := &Table{
		globals: make(map[VariableName]int),
		lines:   make(map[int]int),
		labels:  make(map[string]int),
	}
	for i := range t.defaultTypes {
		t.defaultTypes[i] = Float64
	}
	return t
}

func (t *Table) alloc(make_ func(id int) Entry) int {
	id := len(t.entries)
	t.entries = append(t.entries, make_(id))
	return id
}

// Get returns the entry for id. It panics on an out-of-range id, since
// every non-NULLID operand the lowering pass emits must resolve — a
// miss here is an internal compiler bug, not a user-facing error.
func (t *Table) Get(id int) Entry {
	if id < 0 || id >= len(t.entries) {
		panic(fmt.Sprintf("symbols: id %d out of range", id))
	}
	return t.entries[id]
}

// ResolveType decides a bare identifier's DataType. If suffix is non-zero
// it dictates the type directly; otherwise the identifier's first letter
// is looked up in the default-type table.
func (t *Table) ResolveType(bareName string, suffix byte) (DataType, error) {
	switch suffix {
	case '%':
		return Int32, nil
	case '&', '@':
		return Int64, nil
	case '!':
		return Float32, nil
	case '#':
		return Float64, nil
	case '$':
		return String, nil
	case 0:
		if bareName == "" {
			return Float64, nil
		}
		c := bareName[0]
		switch {
		case c >= 'a' && c <= 'z':
			c = c - 'a' + 'A'
		case c < 'A' || c > 'Z':
			return Float64, nil
		}
		return t.defaultTypes[c-'A'], nil
	default:
		return 0, fmt.Errorf("symbols: unknown type suffix %q", suffix)
	}
}

// SetDefaultDataType implements DEFINT/DEFLNG/DEFSNG/DEFDBL/DEFSTR: every
// letter in [from, to] (inclusive, uppercase) defaults to dt.
func (t *Table) SetDefaultDataType(from, to byte, dt DataType) {
	if from > to {
		from, to = to, from
	}
	for c := from; c <= to; c++ {
		if c < 'A' || c > 'Z' {
			continue
		}
		t.defaultTypes[c-'A'] = dt
	}
}

// currentScope returns the innermost open declaration scope, or nil at
// global scope.
func (t *Table) currentScope() *scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return &t.scopes[len(t.scopes)-1]
}

// lookupName resolves name against the innermost UDF parameter scope
// first, falling back to the global namespace — parameters shadow
// same-named globals for the body of their UDF.
func (t *Table) lookupName(name VariableName) (int, bool) {
	if sc := t.currentScope(); sc != nil {
		if id, ok := sc.params[name]; ok {
			return id, true
		}
	}
	id, ok := t.globals[name]
	return id, ok
}

// AddVariableOrUDF performs an idempotent get-or-create against name. If
// no entry is bound to name yet, factory decides which concrete Entry to
// create (Variable, ArrayRef bound to a fresh Variable, or UDF); the new
// entry is registered under name (globally, or as a parameter of the
// current scope — callers declaring UDF parameters use AddParam instead).
// visitor then runs unconditionally, whether the entry was just created or
// already existed, to apply per-call logic such as an arity check or
// collecting array indices.
func (t *Table) AddVariableOrUDF(name VariableName, factory func(VariableName) Entry, visitor func(int, Entry) error) (int, error) {
	id, ok := t.lookupName(name)
	if !ok {
		e := factory(name)
		id = t.alloc(func(allocated int) Entry {
			rebind(e, allocated)
			return e
		})
		if sc := t.currentScope(); sc != nil {
			sc.params[name] = id
		} else {
			t.globals[name] = id
		}
	}
	entry := t.entries[id]
	if visitor != nil {
		if err := visitor(id, entry); err != nil {
			return NULLID, err
		}
	}
	return id, nil
}

// rebind fixes up the id embedded in a freshly constructed Entry once its
// slot in the table is known; factories build entries with id 0 as a
// placeholder.
func rebind(e Entry, id int) {
	switch v := e.(type) {
	case *Variable:
		v.id = id
	case *ArrayRef:
		v.id = id
	case *UDF:
		v.id = id
	case *Tmp:
		v.id = id
	case *Label:
		v.id = id
	default:
		panic(fmt.Sprintf("symbols: unknown entry type %T", e))
	}
}

// AddParam declares a UDF formal parameter in the current declaration
// scope. It must be called between PushDeclarationScope and PopScope.
func (t *Table) AddParam(name VariableName) (int, error) {
	sc := t.currentScope()
	if sc == nil {
		return NULLID, fmt.Errorf("symbols: AddParam outside a declaration scope")
	}
	if id, ok := sc.params[name]; ok {
		return id, nil
	}
	id := t.alloc(func(allocated int) Entry {
		return &Variable{id: allocated, Name: name}
	})
	sc.params[name] = id
	return id, nil
}

// AddTmp allocates a fresh anonymous temporary of the given type,
// optionally preinitialised with init (nil for uninitialised storage).
func (t *Table) AddTmp(dt DataType, init *Literal) int {
	return t.alloc(func(id int) Entry {
		return &Tmp{id: id, Type: dt, Init: init}
	})
}

// AddTmpCompatibleWith allocates a fresh temporary whose type matches the
// DataType of the entry referenced by id (a Variable, ArrayRef, Tmp or
// UDF return value).
func (t *Table) AddTmpCompatibleWith(id int) int {
	return t.AddTmp(t.dataTypeOf(id), nil)
}

// dataTypeOf reports the DataType an existing entry carries values as.
func (t *Table) dataTypeOf(id int) DataType {
	switch e := t.Get(id).(type) {
	case *Variable:
		return e.Name.Type
	case *ArrayRef:
		v := t.Get(e.VariableID).(*Variable)
		return v.Name.Type
	case *Tmp:
		return e.Type
	case *UDF:
		return e.ReturnType
	default:
		panic(fmt.Sprintf("symbols: entry %d of kind %v carries no DataType", id, e.Kind()))
	}
}

// DataTypeOf is the exported form of dataTypeOf, used by lowering to type
// an already-resolved operand id.
func (t *Table) DataTypeOf(id int) DataType {
	return t.dataTypeOf(id)
}

// AddArrayReference allocates a fresh ArrayRef bound to variableID.
func (t *Table) AddArrayReference(variableID int) int {
	return t.alloc(func(id int) Entry {
		return &ArrayRef{id: id, VariableID: variableID}
	})
}

// AddGotoTarget allocates a fresh synthetic (anonymous) label, used for
// compiler-generated branch targets that have no source-level name.
func (t *Table) AddGotoTarget() int {
	return t.alloc(func(id int) Entry {
		return &Label{id: id, Synthetic: true}
	})
}

// AddNamedLabel interns a string label by name: repeated calls with the
// same name return the same id.
func (t *Table) AddNamedLabel(name string) int {
	if id, ok := t.labels[name]; ok {
		return id
	}
	id := t.alloc(func(id int) Entry {
		return &Label{id: id, Name: name}
	})
	t.labels[name] = id
	return id
}

// AddLineLabel interns a label by BASIC line number: repeated calls with
// the same line number return the same id.
func (t *Table) AddLineLabel(lineNumber int) int {
	if id, ok := t.lines[lineNumber]; ok {
		return id
	}
	id := t.alloc(func(id int) Entry {
		return &Label{id: id, LineNumber: lineNumber}
	})
	t.lines[lineNumber] = id
	return id
}

// LookupNamedLabel reports the id previously interned for name, if any.
func (t *Table) LookupNamedLabel(name string) (int, bool) {
	id, ok := t.labels[name]
	return id, ok
}

// LookupLineLabel reports the id previously interned for lineNumber, if
// any.
func (t *Table) LookupLineLabel(lineNumber int) (int, bool) {
	id, ok := t.lines[lineNumber]
	return id, ok
}

// PushDeclarationScope opens a child scope for udfID's parameter
// declarations. Must be paired with PopScope.
func (t *Table) PushDeclarationScope(udfID int) {
	t.scopes = append(t.scopes, scope{udfID: udfID, params: make(map[VariableName]int)})
}

// PopScope closes the innermost declaration scope opened by
// PushDeclarationScope. It panics if no scope is open, since an unbalanced
// push/pop is an internal compiler bug.
func (t *Table) PopScope() {
	if len(t.scopes) == 0 {
		panic("symbols: PopScope with no open scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// InScope reports whether a declaration scope is currently open, and if
// so, which UDF it belongs to.
func (t *Table) InScope() (udfID int, ok bool) {
	sc := t.currentScope()
	if sc == nil {
		return NULLID, false
	}
	return sc.udfID, true
}

// Len reports the number of entries allocated so far — the exclusive
// upper bound of valid ids.
func (t *Table) Len() int {
	return len(t.entries)
}
