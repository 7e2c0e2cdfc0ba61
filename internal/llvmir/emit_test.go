package llvmir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/mir"
	"github.com/sunholo/bmb/internal/types"
)

func buildAddOneFunction() *mir.Module {
	fn := mir.NewFunction("demo::add_one", types.I64)
	b := fn.NewBlock()
	fn.Entry = b.ID
	x := fn.NewLocal(types.I64)
	fn.Params = append(fn.Params, mir.Param{Name: "x", Local: x, Type: types.I64})
	dst := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: dst, Value: &mir.BinOp{Op: "+", Left: mir.LocalRef{ID: x, Ty: types.I64}, Right: mir.ConstInt{Val: 1, Ty: types.I64}}})
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: dst, Ty: types.I64}})
	return &mir.Module{Functions: []*mir.Function{fn}}
}

func TestGenerate_Deterministic(t *testing.T) {
	module := buildAddOneFunction()

	out1 := NewGenerator("").Generate(module)
	out2 := NewGenerator("").Generate(module)
	require.Equal(t, out1, out2, "two runs over the same MIR module must be byte-identical")
}

func TestGenerate_EmitsFunctionSignatureAndAdd(t *testing.T) {
	out := NewGenerator("").Generate(buildAddOneFunction())
	require.Contains(t, out, "define i64 @demo.add_one(i64 %px) {")
	require.Contains(t, out, "add i64")
	require.Contains(t, out, "ret i64")
}

func TestGenerate_InternsStringLiteralOnce(t *testing.T) {
	fn := mir.NewFunction("demo::greet", types.String)
	b := fn.NewBlock()
	fn.Entry = b.ID
	dst := fn.NewLocal(types.String)
	b.Append(&mir.Assign{Dst: dst, Value: &mir.UseOperand{Op: mir.ConstString{Val: "hi"}}})
	b.SetTerminator(&mir.Return{Value: mir.ConstString{Val: "hi"}})
	module := &mir.Module{Functions: []*mir.Function{fn}}

	out := NewGenerator("").Generate(module)
	require.Equal(t, 1, strings.Count(out, `c"hi"`))
}

func TestMapType(t *testing.T) {
	require.Equal(t, "i1", mapType(types.Bool))
	require.Equal(t, "void", mapType(types.Unit))
	require.Equal(t, "%BmbString*", mapType(types.String))
	require.Equal(t, "{ i1, i64 }", mapType(&types.Optional{Elem: types.I64}))
}
