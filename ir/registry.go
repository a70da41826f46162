package ir

import (
	"strconv"
)

// TypeKey returns a canonical key for a type. Two structurally identical
// types produce the same key.
func TypeKey(t Type) string {
	return string(appendTypeKey(make([]byte, 0, 32), t))
}

func appendTypeKey(b []byte, t Type) []byte {
	switch t := t.(type) {
	case nil:
		return append(b, "none"...)
	case IntegerType:
		b = append(b, "int:"...)
		return strconv.AppendUint(b, uint64(t.Width), 10)
	case FloatType:
		b = append(b, "float:"...)
		return strconv.AppendInt(b, int64(t.Kind), 10)
	case IndexType:
		return append(b, "index"...)
	case VectorType:
		b = append(b, "vec:"...)
		b = strconv.AppendUint(b, uint64(t.Len), 10)
		b = append(b, ':')
		return appendTypeKey(b, t.Elem)
	case MemRefType:
		b = append(b, "memref:"...)
		for _, d := range t.Shape {
			b = strconv.AppendInt(b, d, 10)
			b = append(b, ',')
		}
		b = append(b, ':')
		b = appendTypeKey(b, t.Elem)
		if t.Layout != nil {
			b = append(b, ':')
			b = append(b, t.Layout.String()...)
		}
		return b
	case PointerType:
		b = append(b, "ptr:"...)
		return strconv.AppendUint(b, uint64(t.AddrSpace), 10)
	case StructType:
		b = append(b, "struct("...)
		for i, f := range t.Fields {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendTypeKey(b, f)
		}
		return append(b, ')')
	case ArrayType:
		b = append(b, "array:"...)
		b = strconv.AppendUint(b, t.Len, 10)
		b = append(b, ':')
		return appendTypeKey(b, t.Elem)
	default:
		return append(b, t.String()...)
	}
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	return TypeKey(a) == TypeKey(b)
}

// TypeCache memoizes a per-type translation, keyed by TypeKey. Backends use
// it to declare each distinct target type once.
type TypeCache[T any] struct {
	entries map[string]T
}

// NewTypeCache creates an empty cache.
func NewTypeCache[T any]() *TypeCache[T] {
	return &TypeCache[T]{entries: make(map[string]T, 16)}
}

// GetOrCreate returns the cached translation of t, calling create on a miss.
func (c *TypeCache[T]) GetOrCreate(t Type, create func(Type) (T, error)) (T, error) {
	key := TypeKey(t)
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := create(t)
	if err != nil {
		return v, err
	}
	c.entries[key] = v
	return v, nil
}

// Len returns the number of cached types.
func (c *TypeCache[T]) Len() int {
	return len(c.entries)
}
