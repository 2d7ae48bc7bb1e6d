// Package asm implements the assembler pipeline of spec.md §4.8:
// tokenize, parse, generate, resolve. Assemble is the core API entry
// point; the four stages are also exported individually for tooling (a
// debugger frontend that wants tokens for syntax highlighting, say)
// built on top of this package.
package asm

import (
	"kcpu/hw"
	"kcpu/kcspec"
	"kcpu/lang"
)

// Assemble compiles one .ks source file into its packed Word stream.
func Assemble(source string) ([]hw.Word, error) {
	return AssembleWith(lang.NewBuiltinLang(kcspec.InstDefs), source)
}

// AssembleWith is Assemble against an explicit language table, for tests
// that want a reduced instruction set.
func AssembleWith(l *lang.Lang, source string) ([]hw.Word, error) {
	lines, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	stmts, err := Parse(lines)
	if err != nil {
		return nil, err
	}
	elements, err := Generate(l, stmts)
	if err != nil {
		return nil, err
	}
	return Resolve(elements)
}
