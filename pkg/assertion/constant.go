package assertion

import (
	"fmt"
	"go/constant"
	gotoken "go/token"
	"go/types"
	"reflect"
)

// constLeaf is a leaf whose text is a Go constant expression. Its
// value is materialized from the text instead of an operand.
type constLeaf struct {
	val   constant.Value
	basic *types.Basic
}

// evalConst evaluates text in the universe scope. It reports false
// for anything that is not a constant or nil.
func evalConst(text string) (*constLeaf, bool) {
	if text == "" {
		return nil, false
	}
	tv, err := types.Eval(gotoken.NewFileSet(), nil, gotoken.NoPos, text)
	if err != nil {
		return nil, false
	}

	basic, ok := tv.Type.(*types.Basic)
	if !ok {
		return nil, false
	}
	if tv.IsNil() {
		return &constLeaf{basic: basic}, true
	}
	if tv.Value == nil {
		return nil, false
	}
	return &constLeaf{val: tv.Value, basic: basic}, true
}

func (c *constLeaf) isNil() bool {
	return c.val == nil
}

func (c *constLeaf) untyped() bool {
	return c.basic.Info()&types.IsUntyped != 0
}

var basicTypes = map[types.BasicKind]reflect.Type{
	types.Bool:           reflect.TypeOf((*bool)(nil)).Elem(),
	types.Int:            reflect.TypeOf((*int)(nil)).Elem(),
	types.Int8:           reflect.TypeOf((*int8)(nil)).Elem(),
	types.Int16:          reflect.TypeOf((*int16)(nil)).Elem(),
	types.Int32:          reflect.TypeOf((*int32)(nil)).Elem(),
	types.Int64:          reflect.TypeOf((*int64)(nil)).Elem(),
	types.Uint:           reflect.TypeOf((*uint)(nil)).Elem(),
	types.Uint8:          reflect.TypeOf((*uint8)(nil)).Elem(),
	types.Uint16:         reflect.TypeOf((*uint16)(nil)).Elem(),
	types.Uint32:         reflect.TypeOf((*uint32)(nil)).Elem(),
	types.Uint64:         reflect.TypeOf((*uint64)(nil)).Elem(),
	types.Uintptr:        reflect.TypeOf((*uintptr)(nil)).Elem(),
	types.Float32:        reflect.TypeOf((*float32)(nil)).Elem(),
	types.Float64:        reflect.TypeOf((*float64)(nil)).Elem(),
	types.Complex64:      reflect.TypeOf((*complex64)(nil)).Elem(),
	types.Complex128:     reflect.TypeOf((*complex128)(nil)).Elem(),
	types.String:         reflect.TypeOf((*string)(nil)).Elem(),
	types.UntypedBool:    reflect.TypeOf((*bool)(nil)).Elem(),
	types.UntypedInt:     reflect.TypeOf((*int)(nil)).Elem(),
	types.UntypedRune:    reflect.TypeOf((*rune)(nil)).Elem(),
	types.UntypedFloat:   reflect.TypeOf((*float64)(nil)).Elem(),
	types.UntypedComplex: reflect.TypeOf((*complex128)(nil)).Elem(),
	types.UntypedString:  reflect.TypeOf((*string)(nil)).Elem(),
}

// goType returns the constant's own type, or its default type when
// untyped. It is nil for nil.
func (c *constLeaf) goType() reflect.Type {
	return basicTypes[c.basic.Kind()]
}

// value materializes the constant in its own or default type.
func (c *constLeaf) value() (reflect.Value, error) {
	if c.isNil() {
		return reflect.Value{}, nil
	}
	return c.convert(c.goType())
}

// valueFor materializes the constant for a comparison whose other
// side has type peer. An untyped constant takes the peer's type, as
// in Go; a typed constant keeps its own.
func (c *constLeaf) valueFor(peer reflect.Type) (reflect.Value, error) {
	if c.isNil() || peer == nil || !c.untyped() {
		return c.value()
	}
	return c.convert(peer)
}

// widest picks the default type for a comparison of two untyped
// constants: the later of int, rune, float and complex.
func widest(a, b *constLeaf) reflect.Type {
	if a.basic.Kind() >= b.basic.Kind() {
		return a.goType()
	}
	return b.goType()
}

// convert represents the constant as a value of type t.
func (c *constLeaf) convert(t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	fail := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf(
			"constant %s cannot be represented as %s", c.val, t,
		)
	}

	switch t.Kind() {
	case reflect.Bool:
		if c.val.Kind() != constant.Bool {
			return fail()
		}
		out.SetBool(constant.BoolVal(c.val))

	case reflect.String:
		if c.val.Kind() != constant.String {
			return fail()
		}
		out.SetString(constant.StringVal(c.val))

	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		n, exact := constant.Int64Val(constant.ToInt(c.val))
		if !exact || out.OverflowInt(n) {
			return fail()
		}
		out.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, exact := constant.Uint64Val(constant.ToInt(c.val))
		if !exact || out.OverflowUint(n) {
			return fail()
		}
		out.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f := constant.ToFloat(c.val)
		if f.Kind() != constant.Float && f.Kind() != constant.Int {
			return fail()
		}
		x, _ := constant.Float64Val(f)
		if out.OverflowFloat(x) {
			return fail()
		}
		out.SetFloat(x)

	case reflect.Complex64, reflect.Complex128:
		z := constant.ToComplex(c.val)
		if z.Kind() != constant.Complex {
			return fail()
		}
		re, _ := constant.Float64Val(constant.Real(z))
		im, _ := constant.Float64Val(constant.Imag(z))
		if out.OverflowComplex(complex(re, im)) {
			return fail()
		}
		out.SetComplex(complex(re, im))

	case reflect.Interface:
		v, err := c.value()
		if err != nil {
			return v, err
		}
		if !v.Type().Implements(t) {
			return fail()
		}
		return v, nil

	default:
		return fail()
	}

	return out, nil
}
