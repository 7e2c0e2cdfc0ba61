package iface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_AddFunctionRegistersUnderQualifiedKey(t *testing.T) {
	b := NewBuilder()
	b.AddFunction([]string{"a", "b"}, &FuncSig{Name: "foo"})
	tables := b.Finish()

	sig, ok := tables.Function("a::b::foo")
	require.True(t, ok)
	require.Equal(t, "a::b", sig.Module)

	m, ok := tables.Module("a::b")
	require.True(t, ok)
	require.Contains(t, m.Functions, "foo")
}

func TestBuilder_AddFunctionRootModuleUsesEmptyPrefix(t *testing.T) {
	b := NewBuilder()
	b.AddFunction(nil, &FuncSig{Name: "main"})
	tables := b.Finish()

	_, ok := tables.Function("::main")
	require.True(t, ok)
}

func TestBuilder_AddTypeRegistersUnderQualifiedKey(t *testing.T) {
	b := NewBuilder()
	b.AddType([]string{"a"}, &TypeDecl{Name: "Opt"})
	tables := b.Finish()

	decl, ok := tables.Type("a::Opt")
	require.True(t, ok)
	require.Equal(t, "a", decl.Module)
}

func TestBuilder_EnsureModuleReusesExistingEntry(t *testing.T) {
	b := NewBuilder()
	b.AddFunction([]string{"a"}, &FuncSig{Name: "foo"})
	b.AddType([]string{"a"}, &TypeDecl{Name: "T"})
	tables := b.Finish()

	require.Len(t, tables.AllModules(), 1)
	m, ok := tables.Module("a")
	require.True(t, ok)
	require.Len(t, m.Functions, 1)
	require.Len(t, m.Types, 1)
}

func TestModule_PathString(t *testing.T) {
	m := &Module{Path: []string{"a", "b", "c"}}
	require.Equal(t, "a::b::c", m.PathString())

	root := &Module{Path: nil}
	require.Equal(t, "", root.PathString())
}

func TestTables_AllModulesCoversEveryRegisteredModule(t *testing.T) {
	b := NewBuilder()
	b.AddFunction([]string{"a"}, &FuncSig{Name: "foo"})
	b.AddFunction([]string{"b"}, &FuncSig{Name: "bar"})
	tables := b.Finish()

	require.Len(t, tables.AllModules(), 2)
}
