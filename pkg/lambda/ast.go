// Package lambda is the term-construction surface: build untyped lambda
// terms programmatically (spec.md §6.1), then hand them to ToNet to lower
// them onto an inet.Pool for reduction, and FromNet to render a reduced
// net back as a term.
package lambda

import "github.com/vic/lambdanet/pkg/inet"

// Binder is a bound variable's identity. Variables are identified by
// binder identity, not by name (spec.md §4.3): two Binders are the same
// variable iff they are the same pointer, regardless of their Name, which
// exists only for diagnostics.
type Binder struct {
	Name string
}

// Term is any node of a lambda term tree.
type Term interface {
	isTerm()
}

// VarTerm is a use of a previously bound variable.
type VarTerm struct {
	Bound *Binder
}

// LamTerm is a lambda abstraction.
type LamTerm struct {
	Bound *Binder
	Body  Term
}

// AppTerm is a function application.
type AppTerm struct {
	Fn, Arg Term
}

// FixTerm is a recursive binding. Fn must evaluate, at build time, to a
// LamTerm — fix always wraps an abstraction whose bound variable denotes
// the recursive reference (see original_source/tests.c's invariable
// fix(lambda(rec, ...)) shape, and DESIGN.md's resolution of the DUP⋈FIX
// Open Question).
type FixTerm struct {
	Fn Term
}

// IfTerm selects Then or Else by Cond's runtime value (0 is false, any
// nonzero is true).
type IfTerm struct {
	Cond, Then, Else Term
}

// CellTerm is an opaque machine-word literal.
type CellTerm struct {
	Value uint64
}

// UnaryTerm calls a host-provided one-argument foreign function.
type UnaryTerm struct {
	Name string
	Fn   inet.UnaryFn
	Arg  Term
}

// BinaryTerm calls a host-provided two-argument foreign function.
type BinaryTerm struct {
	Name     string
	Fn       inet.BinaryFn
	Lhs, Rhs Term
}

func (VarTerm) isTerm()    {}
func (LamTerm) isTerm()    {}
func (AppTerm) isTerm()    {}
func (FixTerm) isTerm()    {}
func (IfTerm) isTerm()     {}
func (CellTerm) isTerm()   {}
func (UnaryTerm) isTerm()  {}
func (BinaryTerm) isTerm() {}

// Var references a previously introduced Binder.
func Var(b *Binder) Term { return VarTerm{Bound: b} }

// Lambda introduces a fresh Binder, passes it to build, and wraps the
// result. name is used only for diagnostics (InvalidTermError messages).
func Lambda(name string, build func(bound *Binder) Term) Term {
	b := &Binder{Name: name}
	return LamTerm{Bound: b, Body: build(b)}
}

// Apply builds a function application.
func Apply(fn, arg Term) Term { return AppTerm{Fn: fn, Arg: arg} }

// Fix builds a recursive binding: build receives the binder denoting
// "the recursive call" and must return the function body.
func Fix(name string, build func(rec *Binder) Term) Term {
	return FixTerm{Fn: Lambda(name, build)}
}

// IfThenElse builds a conditional.
func IfThenElse(cond, then, els Term) Term {
	return IfTerm{Cond: cond, Then: then, Else: els}
}

// Cell builds a literal.
func Cell(v uint64) Term { return CellTerm{Value: v} }

// UnaryCall builds a one-argument foreign-function call.
func UnaryCall(name string, fn inet.UnaryFn, arg Term) Term {
	return UnaryTerm{Name: name, Fn: fn, Arg: arg}
}

// BinaryCall builds a two-argument foreign-function call.
func BinaryCall(name string, fn inet.BinaryFn, lhs, rhs Term) Term {
	return BinaryTerm{Name: name, Fn: fn, Lhs: lhs, Rhs: rhs}
}
