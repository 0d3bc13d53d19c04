// Package script runs user-supplied Lua text transforms.
//
// A transform script defines a global function `transform(text)` that
// returns the replacement text. Scripts run in a restricted state: no
// io, no os, no module loading from disk, and a wall-clock budget per
// call. The host applies the result to the editor as a single undo step.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Errors returned when running transforms.
var (
	ErrNoTransform = errors.New("script does not define a transform function")
	ErrBadResult   = errors.New("transform did not return a string")
)

// DefaultTimeout bounds one transform call.
const DefaultTimeout = 2 * time.Second

// Transform is a compiled, named Lua text transform. Compilation happens
// once; each Apply runs in a fresh Lua state so scripts cannot observe
// each other or persist state between calls.
type Transform struct {
	Name    string
	proto   *lua.FunctionProto
	timeout time.Duration
}

// Option configures a Transform.
type Option func(*Transform)

// WithTimeout sets the wall-clock budget for one Apply call.
func WithTimeout(d time.Duration) Option {
	return func(t *Transform) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// Compile parses and compiles a transform script.
func Compile(name, source string, opts ...Option) (*Transform, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling script %s: %w", name, err)
	}
	t := &Transform{Name: name, proto: proto, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// LoadFile compiles a transform from a .lua file; the transform is named
// after the file.
func LoadFile(path string, opts ...Option) (*Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".lua")
	return Compile(name, string(data), opts...)
}

// LoadDir compiles every .lua file in dir, sorted by name. A missing
// directory yields no transforms.
func LoadDir(dir string, opts ...Option) ([]*Transform, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading script directory %s: %w", dir, err)
	}

	var out []*Transform
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, entry.Name()), opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Apply runs the transform on text and returns the result. Apply has the
// func(string) (string, error) shape the editor's transform hook expects.
func (t *Transform) Apply(text string) (string, error) {
	L := newRestrictedState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	L.SetContext(ctx)

	L.Push(L.NewFunctionFromProto(t.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return "", fmt.Errorf("running script %s: %w", t.Name, err)
	}

	fn := L.GetGlobal("transform")
	if fn.Type() != lua.LTFunction {
		return "", fmt.Errorf("script %s: %w", t.Name, ErrNoTransform)
	}

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(text)); err != nil {
		return "", fmt.Errorf("transform %s: %w", t.Name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("transform %s returned %s: %w", t.Name, ret.Type(), ErrBadResult)
	}
	return string(s), nil
}

// newRestrictedState builds a Lua state with only the pure standard
// libraries and no way to reach the filesystem or spawn processes.
func newRestrictedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// Base brings in chunk loaders that can touch the filesystem.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
	return L
}
