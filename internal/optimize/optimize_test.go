package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/mir"
	"github.com/sunholo/bmb/internal/types"
)

func TestFoldConstants_Arithmetic(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	b := fn.NewBlock()
	fn.Entry = b.ID
	dst := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: dst, Value: &mir.BinOp{Op: "+", Left: mir.ConstInt{Val: 2, Ty: types.I64}, Right: mir.ConstInt{Val: 3, Ty: types.I64}}})
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: dst, Ty: types.I64}})

	changed := foldConstants(fn)
	require.True(t, changed)

	asn := b.Statements[0].(*mir.Assign)
	use, ok := asn.Value.(*mir.UseOperand)
	require.True(t, ok)
	ci, ok := use.Op.(mir.ConstInt)
	require.True(t, ok)
	require.Equal(t, int64(5), ci.Val)
}

func TestFoldConstants_DivByZeroNotFolded(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	b := fn.NewBlock()
	dst := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: dst, Value: &mir.BinOp{Op: "/", Left: mir.ConstInt{Val: 1, Ty: types.I64}, Right: mir.ConstInt{Val: 0, Ty: types.I64}}})
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: dst, Ty: types.I64}})

	changed := foldConstants(fn)
	require.False(t, changed)
}

func TestEliminateDeadCode_RemovesUnusedAssign(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	b := fn.NewBlock()
	fn.Entry = b.ID
	dead := fn.NewLocal(types.I64)
	live := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: dead, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 1, Ty: types.I64}}})
	b.Append(&mir.Assign{Dst: live, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 2, Ty: types.I64}}})
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: live, Ty: types.I64}})

	changed := eliminateDeadCode(fn)
	require.True(t, changed)
	require.Len(t, b.Statements, 1)
	require.Equal(t, live, b.Statements[0].(*mir.Assign).Dst)
}

func TestPropagateCopies_ReplacesUses(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	b := fn.NewBlock()
	fn.Entry = b.ID
	x := fn.NewLocal(types.I64)
	y := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: x, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 7, Ty: types.I64}}})
	b.Append(&mir.Assign{Dst: y, Value: &mir.UseOperand{Op: mir.LocalRef{ID: x, Ty: types.I64}}})
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: y, Ty: types.I64}})

	changed := propagateCopies(fn)
	require.True(t, changed)

	ret := b.Term.(*mir.Return)
	ci, ok := ret.Value.(mir.ConstInt)
	require.True(t, ok)
	require.Equal(t, int64(7), ci.Val)
}

func TestMergeBlocks_UniqueSuccessor(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	a := fn.NewBlock()
	fn.Entry = a.ID
	c := fn.NewBlock()
	a.SetTerminator(&mir.Jump{Target: c.ID})
	dst := fn.NewLocal(types.I64)
	c.Append(&mir.Assign{Dst: dst, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 9, Ty: types.I64}}})
	c.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: dst, Ty: types.I64}})

	changed := mergeBlocks(fn)
	require.True(t, changed)
	require.Len(t, fn.Blocks, 1)
	require.Len(t, a.Statements, 1)
	_, stillThere := fn.Blocks[c.ID]
	require.False(t, stillThere)
}

func TestMergeBlocks_NeverMergesAwayEntry(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	a := fn.NewBlock()
	header := fn.NewBlock()
	fn.Entry = header.ID
	dst := fn.NewLocal(types.I64)
	a.Append(&mir.Assign{Dst: dst, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 1, Ty: types.I64}}})
	a.SetTerminator(&mir.Jump{Target: header.ID})
	header.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: dst, Ty: types.I64}})

	mergeBlocks(fn)
	_, stillThere := fn.Blocks[header.ID]
	require.True(t, stillThere, "entry block must never be merged away")
}

func TestRun_FixpointWithinCap(t *testing.T) {
	fn := mir.NewFunction("f", types.I64)
	b := fn.NewBlock()
	fn.Entry = b.ID
	x := fn.NewLocal(types.I64)
	y := fn.NewLocal(types.I64)
	z := fn.NewLocal(types.I64)
	b.Append(&mir.Assign{Dst: x, Value: &mir.BinOp{Op: "+", Left: mir.ConstInt{Val: 1, Ty: types.I64}, Right: mir.ConstInt{Val: 1, Ty: types.I64}}})
	b.Append(&mir.Assign{Dst: y, Value: &mir.UseOperand{Op: mir.LocalRef{ID: x, Ty: types.I64}}})
	b.Append(&mir.Assign{Dst: z, Value: &mir.UseOperand{Op: mir.ConstInt{Val: 99, Ty: types.I64}}}) // dead
	b.SetTerminator(&mir.Return{Value: mir.LocalRef{ID: y, Ty: types.I64}})

	Run(fn, nil)

	require.Len(t, b.Statements, 0, "the whole computation should fold down to a bare constant return")
	ret := b.Term.(*mir.Return)
	ci, ok := ret.Value.(mir.ConstInt)
	require.True(t, ok)
	require.Equal(t, int64(2), ci.Val)
}
