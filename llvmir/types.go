package llvmir

import (
	"fmt"

	"github.com/llir/llvm/ir/types"

	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
)

// typeOf returns the LLVM type of t, converting memrefs and index first.
func (e *exporter) typeOf(t ir.Type) (types.Type, error) {
	return e.types.GetOrCreate(t, e.createType)
}

func (e *exporter) createType(t ir.Type) (types.Type, error) {
	switch t := t.(type) {
	case ir.IntegerType:
		return types.NewInt(uint64(t.Width)), nil
	case ir.FloatType:
		switch t.Kind {
		case ir.F16:
			return types.Half, nil
		case ir.F32:
			return types.Float, nil
		case ir.F64:
			return types.Double, nil
		default:
			return nil, fmt.Errorf("no LLVM type for %s", t)
		}
	case ir.VectorType:
		elem, err := e.typeOf(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewVector(uint64(t.Len), elem), nil
	case ir.PointerType:
		p := types.NewPointer(types.I8)
		p.AddrSpace = types.AddrSpace(t.AddrSpace)
		return p, nil
	case ir.StructType:
		fields := make([]types.Type, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := e.typeOf(f)
			if err != nil {
				return nil, err
			}
			fields[i] = ft
		}
		return types.NewStruct(fields...), nil
	case ir.ArrayType:
		elem, err := e.typeOf(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewArray(t.Len, elem), nil
	case ir.IndexType, ir.MemRefType:
		converted, err := llvm.TypeConverter{}.ConvertType(t)
		if err != nil {
			return nil, err
		}
		return e.typeOf(converted)
	default:
		return nil, fmt.Errorf("no LLVM type for %s", t)
	}
}
