package mir

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/iface"
	"github.com/sunholo/bmb/internal/types"
)

// Lowerer implements spec.md §4.6: lower(typed_proved_ast) -> MIR module.
// It consumes the checker's local-variable types indirectly (by
// re-synthesizing as it walks, mirroring internal/types.Checker's own
// bidirectional walk) since the checker does not mutate the AST in place
// with resolved types.
type Lowerer struct {
	tables    *iface.Tables
	module    string
	proved    map[string]bool // obligation cache keys the verifier discharged
	callGraph *types.CallGraph

	fn      *Function
	cur     *Block
	env     *localEnv
	breakTo []BlockID // stack of loop-exit targets for `break`
	loopHdr []BlockID // stack of loop-header targets for `continue`
}

type localEnv struct {
	vars   map[string]LocalID
	parent *localEnv
}

func newLocalEnv(parent *localEnv) *localEnv {
	return &localEnv{vars: make(map[string]LocalID), parent: parent}
}

func (e *localEnv) bind(name string, id LocalID) { e.vars[name] = id }

func (e *localEnv) lookup(name string) (LocalID, bool) {
	for env := e; env != nil; env = env.parent {
		if id, ok := env.vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func NewLowerer(tables *iface.Tables, module string, proved map[string]bool, callGraph *types.CallGraph) *Lowerer {
	return &Lowerer{tables: tables, module: module, proved: proved, callGraph: callGraph}
}

// LowerFunc lowers one function declaration into a MIR Function.
func (l *Lowerer) LowerFunc(sig *iface.FuncSig, mangledName string) *Function {
	l.fn = NewFunction(mangledName, sig.Result)
	l.env = newLocalEnv(nil)
	entry := l.fn.NewBlock()
	l.fn.Entry = entry.ID
	l.cur = entry

	for i, name := range sig.ParamNames {
		id := l.fn.NewLocal(sig.Params[i])
		l.fn.Params = append(l.fn.Params, Param{Name: name, Local: id, Type: sig.Params[i]})
		l.env.bind(name, id)
	}

	if sig.Decl == nil || sig.Decl.Body == nil {
		l.cur.SetTerminator(&Unreachable{})
		return l.fn
	}

	selfRecursive := l.callGraph != nil && l.callGraph.IsDirectSelfRecursive(l.module+"::"+sig.Name)
	val := l.lowerTail(sig.Decl.Body, l.module+"::"+sig.Name, sig.ParamNames, selfRecursive)
	if l.cur.Term == nil {
		l.cur.SetTerminator(&Return{Value: val})
	}
	return l.fn
}

// lowerTail lowers an expression that appears in the function's tail
// (return) position, rewriting a direct self-recursive call there into
// parameter reassignment plus a jump back to entry (spec.md §4.6 "Tail
// calls in return position"). It falls back to ordinary lowering plus an
// explicit Return for anything that isn't a tail call.
func (l *Lowerer) lowerTail(e ast.Expr, selfName string, paramNames []string, eligible bool) Operand {
	if eligible {
		if call, ok := unwrapTailCall(e); ok {
			if path, ok := call.Callee.(*ast.PathExpr); ok {
				qualified := l.module + "::" + path.Segments[len(path.Segments)-1]
				if qualified == selfName && len(call.Args) == len(paramNames) {
					return l.lowerTailCall(call, paramNames)
				}
			}
		}
	}
	if block, ok := e.(*ast.BlockExpr); ok {
		return l.lowerTailBlock(block, selfName, paramNames, eligible)
	}
	if ifE, ok := e.(*ast.IfExpr); ok {
		return l.lowerTailIf(ifE, selfName, paramNames, eligible)
	}
	val := l.lowerExpr(e)
	return val
}

func (l *Lowerer) lowerTailBlock(b *ast.BlockExpr, selfName string, paramNames []string, eligible bool) Operand {
	for _, s := range b.Statements {
		l.lowerExpr(s)
	}
	if b.Tail == nil {
		return ConstUnit{}
	}
	return l.lowerTail(b.Tail, selfName, paramNames, eligible)
}

func (l *Lowerer) lowerTailIf(n *ast.IfExpr, selfName string, paramNames []string, eligible bool) Operand {
	cond := l.lowerExpr(n.Cond)
	thenB := l.fn.NewBlock()
	elseB := l.fn.NewBlock()
	l.cur.SetTerminator(&Branch{Cond: cond, Then: thenB.ID, Else: elseB.ID, CondText: ast.UnparseExpr(n.Cond)})

	l.cur = thenB
	thenVal := l.lowerTail(n.Then, selfName, paramNames, eligible)
	if l.cur.Term == nil {
		l.cur.SetTerminator(&Return{Value: thenVal})
	}

	l.cur = elseB
	if n.Else != nil {
		elseVal := l.lowerTail(n.Else, selfName, paramNames, eligible)
		if l.cur.Term == nil {
			l.cur.SetTerminator(&Return{Value: elseVal})
		}
	} else if l.cur.Term == nil {
		l.cur.SetTerminator(&Return{Value: ConstUnit{}})
	}
	// Both arms already terminated with Return; the tail caller sees this
	// as "already terminated" via l.cur.Term being non-nil, so the value
	// returned here is never itself wrapped in another Return.
	return ConstUnit{}
}

// lowerTailCall evaluates every argument into a fresh temporary (so
// reassigning params doesn't observe partially-updated values), then
// reassigns the parameter locals and jumps to entry — the rewrite spec.md
// §4.6 mandates for direct self-recursion.
func (l *Lowerer) lowerTailCall(call *ast.CallExpr, paramNames []string) Operand {
	temps := make([]Operand, len(call.Args))
	for i, a := range call.Args {
		v := l.lowerExpr(a)
		id := l.fn.NewLocal(v.Type())
		l.cur.Append(&Assign{Dst: id, Value: &UseOperand{Op: v}})
		temps[i] = LocalRef{ID: id, Ty: v.Type()}
	}
	for i, name := range paramNames {
		id, _ := l.env.lookup(name)
		l.cur.Append(&Assign{Dst: id, Value: &UseOperand{Op: temps[i]}})
	}
	l.cur.SetTerminator(&Jump{Target: l.fn.Entry})
	return ConstUnit{}
}

// unwrapTailCall reports whether e is (syntactically) exactly a call
// expression, per spec.md §4.6 "with no intervening non-trivial
// computation".
func unwrapTailCall(e ast.Expr) (*ast.CallExpr, bool) {
	call, ok := e.(*ast.CallExpr)
	return call, ok
}

// lowerExpr lowers a non-tail-position expression to an Operand,
// appending whatever statements/blocks are needed to the current block.
func (l *Lowerer) lowerExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.IntLit:
		var ty types.Type = types.I64
		if n.Suffix != "" {
			ty = &types.Prim{Name: n.Suffix}
		}
		return ConstInt{Val: n.Value, Ty: ty}
	case *ast.FloatLit:
		return ConstFloat{Val: n.Value, Ty: types.F64}
	case *ast.BoolLit:
		return ConstBool{Val: n.Value}
	case *ast.StringLit:
		return ConstString{Val: n.Value}
	case *ast.CharLit:
		return ConstInt{Val: int64(n.Value), Ty: types.Char}

	case *ast.PathExpr:
		if len(n.Segments) == 1 {
			if id, ok := l.env.lookup(n.Segments[0]); ok {
				return LocalRef{ID: id, Ty: l.fn.Locals[id]}
			}
		}
		return GlobalRef{Name: joinSegs(n.Segments)}

	case *ast.LetExpr:
		val := l.lowerExpr(n.Value)
		id := l.fn.NewLocal(val.Type())
		l.cur.Append(&Assign{Dst: id, Value: &UseOperand{Op: val}})
		l.env = newLocalEnv(l.env)
		l.env.bind(n.Name, id)
		if n.Body == nil {
			return ConstUnit{}
		}
		result := l.lowerExpr(n.Body)
		l.env = l.env.parent
		return result

	case *ast.BlockExpr:
		l.env = newLocalEnv(l.env)
		for _, s := range n.Statements {
			l.lowerExpr(s)
		}
		var result Operand = ConstUnit{}
		if n.Tail != nil {
			result = l.lowerExpr(n.Tail)
		}
		l.env = l.env.parent
		return result

	case *ast.IfExpr:
		return l.lowerIf(n)

	case *ast.WhileExpr:
		return l.lowerWhile(n)

	case *ast.ForExpr:
		return l.lowerFor(n)

	case *ast.LoopExpr:
		return l.lowerLoop(n)

	case *ast.BreakExpr:
		if len(l.breakTo) > 0 {
			l.cur.SetTerminator(&Jump{Target: l.breakTo[len(l.breakTo)-1]})
		}
		return ConstUnit{}

	case *ast.ContinueExpr:
		if len(l.loopHdr) > 0 {
			l.cur.SetTerminator(&Jump{Target: l.loopHdr[len(l.loopHdr)-1]})
		}
		return ConstUnit{}

	case *ast.ReturnExpr:
		val := l.lowerExpr(n.Value)
		l.cur.SetTerminator(&Return{Value: val})
		return ConstUnit{}

	case *ast.BinaryExpr:
		return l.lowerBinary(n)

	case *ast.UnaryExpr:
		val := l.lowerExpr(n.Operand)
		id := l.fn.NewLocal(val.Type())
		op := "-"
		if n.Op == ast.UnaryNot {
			op = "not"
		}
		l.cur.Append(&Assign{Dst: id, Value: &UnOp{Op: op, Operand: val}})
		return LocalRef{ID: id, Ty: val.Type()}

	case *ast.CallExpr:
		path, _ := n.Callee.(*ast.PathExpr)
		args := make([]Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = l.lowerExpr(a)
		}
		var name string
		if path != nil {
			if len(path.Segments) == 1 {
				name = l.module + "::" + path.Segments[0]
			} else {
				name = joinSegs(path.Segments)
			}
		}
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Call{Dst: &id, Callee: name, Args: args})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.MethodCallExpr:
		return l.lowerMethodCall(n)

	case *ast.IndexExpr:
		base := l.lowerExpr(n.Receiver)
		idx := l.lowerExpr(n.Index)
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Assign{Dst: id, Value: &IndexLoad{Base: base, Index: idx}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.FieldExpr:
		base := l.lowerExpr(n.Receiver)
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Assign{Dst: id, Value: &FieldLoad{Base: base, Index: 0}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.TupleLitExpr:
		elems := make([]Operand, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = l.lowerExpr(el)
		}
		id := l.fn.NewLocal(&types.Tuple{})
		l.cur.Append(&Assign{Dst: id, Value: &MakeTuple{Elems: elems}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.ArrayLitExpr:
		elems := make([]Operand, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = l.lowerExpr(el)
		}
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Assign{Dst: id, Value: &MakeTuple{Elems: elems}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.StructLitExpr:
		fields := make([]Operand, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = l.lowerExpr(f.Value)
		}
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Assign{Dst: id, Value: &MakeVariant{Enum: n.Type, Variant: n.Type, Fields: fields}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}

	case *ast.ClosureExpr:
		// Closures lower to a bare global operand named "closure". No
		// capture analysis or environment-struct layout is done, here or
		// in internal/llvmir, and the closure body is not lowered.
		return GlobalRef{Name: "closure"}

	case *ast.AssignExpr:
		val := l.lowerExpr(n.Value)
		if path, ok := n.Target.(*ast.PathExpr); ok && len(path.Segments) == 1 {
			if id, ok := l.env.lookup(path.Segments[0]); ok {
				l.cur.Append(&Assign{Dst: id, Value: &UseOperand{Op: val}})
			}
		}
		return ConstUnit{}

	case *ast.MatchExpr:
		return l.lowerMatch(n)

	case *ast.CastExpr:
		return l.lowerExpr(n.Value)

	default:
		return ConstUnit{}
	}
}

func (l *Lowerer) lowerMethodCall(n *ast.MethodCallExpr) Operand {
	recv := l.lowerExpr(n.Receiver)
	switch n.Method {
	case "unwrap":
		id := l.fn.NewLocal(nil)
		// unwrap() always lowers to a plain load of the payload field,
		// with no runtime tag test. The proved set is not consulted: an
		// unproved is_some() obligation is a Verify error, and the
		// pipeline does not lower a program that has verify errors.
		l.cur.Append(&Assign{Dst: id, Value: &FieldLoad{Base: recv, Index: 1}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}
	case "unwrap_or":
		args := make([]Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = l.lowerExpr(a)
		}
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Assign{Dst: id, Value: &FieldLoad{Base: recv, Index: 1}})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}
	case "is_some", "is_none":
		id := l.fn.NewLocal(types.Bool)
		l.cur.Append(&Assign{Dst: id, Value: &FieldLoad{Base: recv, Index: 0}})
		return LocalRef{ID: id, Ty: types.Bool}
	default:
		args := make([]Operand, len(n.Args)+1)
		args[0] = recv
		for i, a := range n.Args {
			args[i+1] = l.lowerExpr(a)
		}
		id := l.fn.NewLocal(nil)
		l.cur.Append(&Call{Dst: &id, Callee: n.Method, Args: args})
		return LocalRef{ID: id, Ty: l.fn.Locals[id]}
	}
}

// lowerBinary lowers short-circuit "and"/"or" to conditional branches
// (spec.md §4.6: "Short-circuit and/or lower to conditional branches, not
// arithmetic"), and every other binary operator to a single BinOp
// instruction carrying its exact ast.BinaryOp spelling so the optimizer
// and LLVM emitter can dispatch on overflow-variant vs. plain semantics.
func (l *Lowerer) lowerBinary(n *ast.BinaryExpr) Operand {
	if n.Op == ast.BinAnd || n.Op == ast.BinOr {
		return l.lowerShortCircuit(n)
	}
	left := l.lowerExpr(n.Left)
	right := l.lowerExpr(n.Right)
	resultTy := left.Type()
	switch n.Op {
	case ast.BinEq, ast.BinNeq, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe, ast.BinImplies:
		resultTy = types.Bool
	}
	id := l.fn.NewLocal(resultTy)
	l.cur.Append(&Assign{Dst: id, Value: &BinOp{Op: n.Op.String(), Left: left, Right: right}})
	return LocalRef{ID: id, Ty: resultTy}
}

func (l *Lowerer) lowerShortCircuit(n *ast.BinaryExpr) Operand {
	left := l.lowerExpr(n.Left)
	result := l.fn.NewLocal(types.Bool)

	rhsB := l.fn.NewBlock()
	mergeB := l.fn.NewBlock()

	if n.Op == ast.BinAnd {
		shortB := l.fn.NewBlock()
		l.cur.SetTerminator(&Branch{Cond: left, Then: rhsB.ID, Else: shortB.ID})
		l.cur = shortB
		l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: ConstBool{Val: false}}})
		l.cur.SetTerminator(&Jump{Target: mergeB.ID})
	} else {
		shortB := l.fn.NewBlock()
		l.cur.SetTerminator(&Branch{Cond: left, Then: shortB.ID, Else: rhsB.ID})
		l.cur = shortB
		l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: ConstBool{Val: true}}})
		l.cur.SetTerminator(&Jump{Target: mergeB.ID})
	}

	l.cur = rhsB
	right := l.lowerExpr(n.Right)
	l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: right}})
	l.cur.SetTerminator(&Jump{Target: mergeB.ID})

	l.cur = mergeB
	return LocalRef{ID: result, Ty: types.Bool}
}

func (l *Lowerer) lowerIf(n *ast.IfExpr) Operand {
	cond := l.lowerExpr(n.Cond)
	thenB := l.fn.NewBlock()
	elseB := l.fn.NewBlock()
	mergeB := l.fn.NewBlock()
	l.cur.SetTerminator(&Branch{Cond: cond, Then: thenB.ID, Else: elseB.ID, CondText: ast.UnparseExpr(n.Cond)})

	result := l.fn.NewLocal(nil)

	l.cur = thenB
	thenVal := l.lowerExpr(n.Then)
	l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: thenVal}})
	l.cur.SetTerminator(&Jump{Target: mergeB.ID})

	l.cur = elseB
	var elseVal Operand = ConstUnit{}
	if n.Else != nil {
		elseVal = l.lowerExpr(n.Else)
	}
	l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: elseVal}})
	l.cur.SetTerminator(&Jump{Target: mergeB.ID})

	l.cur = mergeB
	l.fn.Locals[result] = thenVal.Type()
	return LocalRef{ID: result, Ty: thenVal.Type()}
}

func (l *Lowerer) lowerWhile(n *ast.WhileExpr) Operand {
	header := l.fn.NewBlock()
	body := l.fn.NewBlock()
	exit := l.fn.NewBlock()

	l.cur.SetTerminator(&Jump{Target: header.ID})
	l.cur = header
	cond := l.lowerExpr(n.Cond)
	l.cur.SetTerminator(&Branch{Cond: cond, Then: body.ID, Else: exit.ID})

	l.breakTo = append(l.breakTo, exit.ID)
	l.loopHdr = append(l.loopHdr, header.ID)
	l.cur = body
	l.lowerExpr(n.Body)
	if l.cur.Term == nil {
		l.cur.SetTerminator(&Jump{Target: header.ID})
	}
	l.breakTo = l.breakTo[:len(l.breakTo)-1]
	l.loopHdr = l.loopHdr[:len(l.loopHdr)-1]

	l.cur = exit
	return ConstUnit{}
}

func (l *Lowerer) lowerLoop(n *ast.LoopExpr) Operand {
	header := l.fn.NewBlock()
	exit := l.fn.NewBlock()
	l.cur.SetTerminator(&Jump{Target: header.ID})

	l.breakTo = append(l.breakTo, exit.ID)
	l.loopHdr = append(l.loopHdr, header.ID)
	l.cur = header
	l.lowerExpr(n.Body)
	if l.cur.Term == nil {
		l.cur.SetTerminator(&Jump{Target: header.ID})
	}
	l.breakTo = l.breakTo[:len(l.breakTo)-1]
	l.loopHdr = l.loopHdr[:len(l.loopHdr)-1]

	l.cur = exit
	return ConstUnit{}
}

// lowerFor desugars "for x in iter { body }" to the while-over-next()
// pattern (spec.md §4.6): an iterator local, a header that calls next()
// and branches on is_some(), an unwrap() binding x, then the body.
func (l *Lowerer) lowerFor(n *ast.ForExpr) Operand {
	iter := l.lowerExpr(n.Iter)
	iterLocal := l.fn.NewLocal(iter.Type())
	l.cur.Append(&Assign{Dst: iterLocal, Value: &UseOperand{Op: iter}})

	header := l.fn.NewBlock()
	body := l.fn.NewBlock()
	exit := l.fn.NewBlock()
	l.cur.SetTerminator(&Jump{Target: header.ID})

	l.cur = header
	nextLocal := l.fn.NewLocal(nil)
	l.cur.Append(&Call{Dst: &nextLocal, Callee: "next", Args: []Operand{LocalRef{ID: iterLocal, Ty: iter.Type()}}})
	tagLocal := l.fn.NewLocal(types.Bool)
	l.cur.Append(&Assign{Dst: tagLocal, Value: &FieldLoad{Base: LocalRef{ID: nextLocal, Ty: nil}, Index: 0}})
	l.cur.SetTerminator(&Branch{Cond: LocalRef{ID: tagLocal, Ty: types.Bool}, Then: body.ID, Else: exit.ID})

	l.breakTo = append(l.breakTo, exit.ID)
	l.loopHdr = append(l.loopHdr, header.ID)
	l.cur = body
	elemLocal := l.fn.NewLocal(nil)
	l.cur.Append(&Assign{Dst: elemLocal, Value: &FieldLoad{Base: LocalRef{ID: nextLocal, Ty: nil}, Index: 1}})
	l.env = newLocalEnv(l.env)
	l.env.bind(n.Binding, elemLocal)
	l.lowerExpr(n.Body)
	l.env = l.env.parent
	if l.cur.Term == nil {
		l.cur.SetTerminator(&Jump{Target: header.ID})
	}
	l.breakTo = l.breakTo[:len(l.breakTo)-1]
	l.loopHdr = l.loopHdr[:len(l.loopHdr)-1]

	l.cur = exit
	return ConstUnit{}
}

func (l *Lowerer) lowerMatch(n *ast.MatchExpr) Operand {
	scrutinee := l.lowerExpr(n.Scrutinee)
	tree := Compile(n.Arms)
	exit := l.fn.NewBlock()
	result := l.fn.NewLocal(nil)
	l.lowerDecisionTree(tree, scrutinee, n.Arms, exit.ID, result)
	l.cur = exit
	return LocalRef{ID: result, Ty: l.fn.Locals[result]}
}

func (l *Lowerer) lowerDecisionTree(tree DecisionTree, scrutinee Operand, arms []*ast.MatchArm, exit BlockID, result LocalID) {
	switch t := tree.(type) {
	case *Leaf:
		arm := arms[t.ArmIndex]
		l.env = newLocalEnv(l.env)
		l.bindArmPattern(arm.Pattern, scrutinee)
		val := l.lowerExpr(arm.Body)
		l.env = l.env.parent
		l.cur.Append(&Assign{Dst: result, Value: &UseOperand{Op: val}})
		l.fn.Locals[result] = val.Type()
		l.cur.SetTerminator(&Jump{Target: exit})

	case *Fail:
		l.cur.SetTerminator(&Unreachable{})

	case *SwitchNode:
		var discOperand Operand = scrutinee
		for _, idx := range t.Path {
			id := l.fn.NewLocal(nil)
			l.cur.Append(&Assign{Dst: id, Value: &FieldLoad{Base: discOperand, Index: idx}})
			discOperand = LocalRef{ID: id, Ty: nil}
		}

		defaultB := l.fn.NewBlock()
		var cases []SwitchCase
		caseBlocks := make(map[string]*Block, len(t.Cases))
		i := int64(0)
		for name := range t.Cases {
			b := l.fn.NewBlock()
			caseBlocks[name] = b
			cases = append(cases, SwitchCase{Value: i, Target: b.ID})
			i++
		}
		l.cur.SetTerminator(&Switch{Discriminant: discOperand, Cases: cases, Default: defaultB.ID})

		for name, sub := range t.Cases {
			l.cur = caseBlocks[name]
			l.lowerDecisionTree(sub, scrutinee, arms, exit, result)
		}

		l.cur = defaultB
		if t.Default != nil {
			l.lowerDecisionTree(t.Default, scrutinee, arms, exit, result)
		} else {
			l.cur.SetTerminator(&Unreachable{})
		}
	}
}

func (l *Lowerer) bindArmPattern(p ast.Pattern, value Operand) {
	switch pat := p.(type) {
	case *ast.BindingPattern:
		id := l.fn.NewLocal(value.Type())
		l.cur.Append(&Assign{Dst: id, Value: &UseOperand{Op: value}})
		l.env.bind(pat.Name, id)
	case *ast.VariantPattern:
		for i, f := range pat.Fields {
			fid := l.fn.NewLocal(nil)
			l.cur.Append(&Assign{Dst: fid, Value: &FieldLoad{Base: value, Index: i + 1}})
			l.bindArmPattern(f, LocalRef{ID: fid, Ty: nil})
		}
	case *ast.TuplePattern:
		for i, el := range pat.Elems {
			fid := l.fn.NewLocal(nil)
			l.cur.Append(&Assign{Dst: fid, Value: &FieldLoad{Base: value, Index: i}})
			l.bindArmPattern(el, LocalRef{ID: fid, Ty: nil})
		}
	case *ast.StructPattern:
		for i, f := range pat.Fields {
			fid := l.fn.NewLocal(nil)
			l.cur.Append(&Assign{Dst: fid, Value: &FieldLoad{Base: value, Index: i}})
			l.bindArmPattern(f.Pattern, LocalRef{ID: fid, Ty: nil})
		}
	}
}

func joinSegs(segs []string) string {
	s := ""
	for i, seg := range segs {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}
