// Package tasks provides a small set of concrete task types, grounded on
// the source's own example pipeline classes, that exercise the engine end
// to end: a literal value source, a string-transform task, and a demo
// pipeline wiring the source directly into the transform.
//
// This package is example content, not engine machinery: a real caller of
// internal/core defines its own task types the same way these do.
package tasks

import (
	"fmt"
	"strings"

	"scriptweaver/internal/core"
	"scriptweaver/internal/manifest"
	"scriptweaver/internal/value"
)

// ModuleName identifies this package in manifest unit records, the way a
// Python module path identifies the module a class was defined in.
const ModuleName = "scriptweaver/internal/tasks"

// NewLiteralSource registers an InputTask whose single output is the fixed
// string v. It never changes between runs unless v itself is different the
// next time the pipeline is constructed.
func NewLiteralSource(reg *core.Registry, v string) *core.InputTask {
	t := core.NewInputTask(reg, ModuleName, "LiteralSource")
	t.AddOutput(core.ValueConnector, value.String(v), "", "text")
	return t
}

// newLiteralSourceFromArgs reconstructs a LiteralSource from its single
// manifest constructor argument during Load.
func newLiteralSourceFromArgs(reg *core.Registry, args []any) (core.Unit, error) {
	if len(args) != 1 {
		return nil, &manifest.ArityMismatchError{Class: "LiteralSource", Got: len(args), Expected: 1}
	}
	v, ok := args[0].(value.Value)
	if !ok {
		return nil, fmt.Errorf("LiteralSource: expected a literal value, got %T", args[0])
	}
	s, _ := v.Raw().(string)
	return NewLiteralSource(reg, s), nil
}

// NewUppercase registers a Task that reads the string value carried by
// upstream's output and writes its upper-cased form as its own output.
func NewUppercase(reg *core.Registry, upstream *core.Connector) *core.Task {
	t := core.NewTask(reg, ModuleName, "Uppercase", func(t *core.Task) error {
		in := t.Inputs()[0].Value()
		s, _ := in.Raw().(string)
		out, err := t.Output(0)
		if err != nil {
			return err
		}
		out.SetValue(value.String(strings.ToUpper(s)))
		return nil
	})
	t.AddInput(upstream, "")
	t.AddOutput(core.ValueConnector, value.Unset, "", "text")
	return t
}

func newUppercaseFromArgs(reg *core.Registry, args []any) (core.Unit, error) {
	if len(args) != 1 {
		return nil, &manifest.ArityMismatchError{Class: "Uppercase", Got: len(args), Expected: 1}
	}
	conn, ok := args[0].(*core.Connector)
	if !ok {
		return nil, fmt.Errorf("Uppercase: expected an upstream connector, got %T", args[0])
	}
	return NewUppercase(reg, conn), nil
}

// Resolver returns a manifest.ClassResolver that knows how to rebuild every
// task type this package defines.
func Resolver() manifest.ClassResolver {
	r := manifest.NewMapResolver()
	r.Register(ModuleName, "LiteralSource", newLiteralSourceFromArgs)
	r.Register(ModuleName, "Uppercase", newUppercaseFromArgs)
	return r
}

// BuildDemo constructs a tiny two-stage pipeline: a literal source feeding
// an Uppercase task. It stands in for the user-authored pipeline module the
// source imported dynamically by name — this engine has no analogous
// dynamic import, so a caller wires its pipeline at compile time instead.
func BuildDemo(reg *core.Registry) (core.Unit, error) {
	src := NewLiteralSource(reg, "hello, scriptweaver")
	out, err := src.Output(0)
	if err != nil {
		return nil, err
	}
	up := NewUppercase(reg, out)
	return up, nil
}
