package module

import (
	"strings"

	"github.com/sunholo/bmb/internal/ast"
)

// checkCycles performs a DFS-based topological sort over the use-import
// graph, emitting a RES003 diagnostic for every cycle found (spec.md §3
// invariant iii: "no cyclic use-imports"). Adapted from a depth-first
// in-path/visited walk: the same shape as detecting a cycle in any
// directed graph, just over module paths instead of linker modules.
func (r *Resolver) checkCycles(modulePaths []string) {
	deps := make(map[string][]string, len(modulePaths))
	spans := make(map[string]ast.Span)
	for _, path := range modulePaths {
		f := r.files[path]
		var ds []string
		for _, use := range f.Imports {
			dep := strings.Join(use.Path, "::")
			if _, ok := r.files[dep]; ok {
				ds = append(ds, dep)
				if _, seen := spans[path+"->"+dep]; !seen {
					spans[path+"->"+dep] = use.Span
				}
			}
		}
		deps[path] = ds
	}

	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var stack []string
	reported := make(map[string]bool)

	var dfs func(string)
	dfs = func(m string) {
		if visited[m] {
			return
		}
		if inPath[m] {
			cycle := cyclePathFrom(stack, m)
			key := strings.Join(cycle, ">")
			if !reported[key] {
				reported[key] = true
				sp := spans[stack[len(stack)-1]+"->"+m]
				r.errorf("RES003", sp, "cyclic use-import: %s", strings.Join(cycle, " -> "))
			}
			return
		}
		inPath[m] = true
		stack = append(stack, m)
		for _, dep := range deps[m] {
			dfs(dep)
		}
		stack = stack[:len(stack)-1]
		inPath[m] = false
		visited[m] = true
	}

	for _, path := range modulePaths {
		dfs(path)
	}
}

func cyclePathFrom(stack []string, target string) []string {
	for i, m := range stack {
		if m == target {
			out := append([]string{}, stack[i:]...)
			return append(out, target)
		}
	}
	return []string{target, target}
}
