package ir

import (
	"strconv"
	"strings"
)

// Attribute is a compile-time constant attached to an operation.
type Attribute interface {
	attr()
	String() string
}

// IntegerAttr is a typed integer constant.
type IntegerAttr struct {
	Value int64
	Type  Type
}

func (IntegerAttr) attr() {}

func (a IntegerAttr) String() string {
	s := strconv.FormatInt(a.Value, 10)
	if a.Type == nil || Equal(a.Type, I64) {
		return s
	}
	return s + " : " + a.Type.String()
}

// BoolAttr is a boolean constant.
type BoolAttr bool

func (BoolAttr) attr() {}

func (a BoolAttr) String() string {
	if a {
		return "true"
	}
	return "false"
}

// StringAttr is a string constant.
type StringAttr string

func (StringAttr) attr() {}

func (a StringAttr) String() string { return strconv.Quote(string(a)) }

// UnitAttr is a presence-only flag.
type UnitAttr struct{}

func (UnitAttr) attr() {}

func (UnitAttr) String() string { return "unit" }

// DenseArrayAttr is an array of integers of one element type,
// printed as array<i32: 1, 2, 3>.
type DenseArrayAttr struct {
	Elem   Type
	Values []int64
}

func (DenseArrayAttr) attr() {}

func (a DenseArrayAttr) String() string {
	var sb strings.Builder
	sb.WriteString("array<")
	sb.WriteString(a.Elem.String())
	for i, v := range a.Values {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	sb.WriteByte('>')
	return sb.String()
}

// I32Array builds a DenseArrayAttr of i32 values.
func I32Array(values ...int64) DenseArrayAttr {
	return DenseArrayAttr{Elem: I32, Values: values}
}

// I64Array builds a DenseArrayAttr of i64 values.
func I64Array(values ...int64) DenseArrayAttr {
	return DenseArrayAttr{Elem: I64, Values: values}
}

// NamedAttr pairs an attribute with its name.
type NamedAttr struct {
	Name  string
	Value Attribute
}

// Attributes is an ordered attribute dictionary.
type Attributes []NamedAttr

// Get returns the attribute with the given name.
func (as Attributes) Get(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Has reports whether the attribute is present.
func (as Attributes) Has(name string) bool {
	_, ok := as.Get(name)
	return ok
}

// Set adds or replaces an attribute.
func (as *Attributes) Set(name string, value Attribute) {
	for i, a := range *as {
		if a.Name == name {
			(*as)[i].Value = value
			return
		}
	}
	*as = append(*as, NamedAttr{Name: name, Value: value})
}

// Delete removes an attribute if present.
func (as *Attributes) Delete(name string) {
	for i, a := range *as {
		if a.Name == name {
			*as = append((*as)[:i], (*as)[i+1:]...)
			return
		}
	}
}

// Int returns the value of an IntegerAttr.
func (as Attributes) Int(name string) (int64, bool) {
	a, ok := as.Get(name)
	if !ok {
		return 0, false
	}
	ia, ok := a.(IntegerAttr)
	if !ok {
		return 0, false
	}
	return ia.Value, true
}

// Bool returns the value of a BoolAttr; a UnitAttr counts as true.
func (as Attributes) Bool(name string) (value, ok bool) {
	a, found := as.Get(name)
	if !found {
		return false, false
	}
	switch a := a.(type) {
	case BoolAttr:
		return bool(a), true
	case UnitAttr:
		return true, true
	default:
		return false, false
	}
}

// Text returns the value of a StringAttr.
func (as Attributes) Text(name string) (string, bool) {
	a, ok := as.Get(name)
	if !ok {
		return "", false
	}
	s, ok := a.(StringAttr)
	return string(s), ok
}

// Array returns the values of a DenseArrayAttr.
func (as Attributes) Array(name string) ([]int64, bool) {
	a, ok := as.Get(name)
	if !ok {
		return nil, false
	}
	d, ok := a.(DenseArrayAttr)
	if !ok {
		return nil, false
	}
	return d.Values, true
}

// Clone returns a shallow copy.
func (as Attributes) Clone() Attributes {
	if as == nil {
		return nil
	}
	out := make(Attributes, len(as))
	copy(out, as)
	return out
}
