package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jshint-go/jshint/pkg/engine"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// StarlarkEvaluator evaluates Starlark configuration scripts. Every
// top-level global that is not callable and does not start with an
// underscore becomes a configuration key.
type StarlarkEvaluator struct {
	timeout time.Duration
}

// NewStarlarkEvaluator creates a new Starlark evaluator.
func NewStarlarkEvaluator(timeout time.Duration) *StarlarkEvaluator {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &StarlarkEvaluator{
		timeout: timeout,
	}
}

// Evaluate executes script and returns its globals as a mapping. The
// defaults mapping is visible to the script as the frozen dict `defaults`.
func (se *StarlarkEvaluator) Evaluate(ctx context.Context, filename, script string, defaults *Mapping) (*Mapping, error) {
	evalCtx, cancel := context.WithTimeout(ctx, se.timeout)
	defer cancel()

	thread := &starlark.Thread{
		Name: "jshint-config",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(os.Stderr, msg)
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-evalCtx.Done():
			thread.Cancel(fmt.Sprintf("execution stopped: %v", evalCtx.Err()))
		case <-done:
		}
	}()

	defaultsDict, err := toStarlarkValue(MappingValue(defaults))
	if err != nil {
		return nil, err
	}
	defaultsDict.Freeze()

	predeclared := starlark.StringDict{
		"struct":   starlark.NewBuiltin("struct", starlarkstruct.Make),
		"env":      starlark.NewBuiltin("env", builtinEnv),
		"defaults": defaultsDict,
	}

	globals, err := starlark.ExecFile(thread, filename, script, predeclared)
	if err != nil {
		return nil, fmt.Errorf("starlark execution failed: %w", err)
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	out := NewMapping()
	for _, name := range names {
		val := globals[name]
		if name[0] == '_' {
			continue
		}
		if _, ok := val.(starlark.Callable); ok {
			continue
		}
		v, err := fromStarlarkValue(name, val)
		if err != nil {
			return nil, err
		}
		out.Set(name, v)
	}
	return out, nil
}

// toStarlarkValue converts a configuration value to a Starlark value.
func toStarlarkValue(v Value) (starlark.Value, error) {
	switch v.Kind() {
	case KindNull:
		return starlark.None, nil
	case KindBool:
		return starlark.Bool(v.b), nil
	case KindNumber:
		switch n := v.num.(type) {
		case int64:
			return starlark.MakeInt64(n), nil
		case float64:
			return starlark.Float(n), nil
		}
		return nil, fmt.Errorf("unsupported number %v", v.num)
	case KindString:
		return starlark.String(v.s), nil
	case KindSequence:
		list := make([]starlark.Value, len(v.seq))
		for i, item := range v.seq {
			sv, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case KindMapping:
		dict := starlark.NewDict(v.m.Len())
		for _, k := range v.m.Keys() {
			item, _ := v.m.Get(k)
			sv, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", v.Kind())
	}
}

// fromStarlarkValue converts a Starlark value to a configuration value.
func fromStarlarkValue(key string, v starlark.Value) (Value, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return Null(), nil
	case starlark.Bool:
		return Bool(bool(val)), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return Value{}, engine.NewUnsupportedValueKindError(key, "starlark big int")
		}
		return Int(i), nil
	case starlark.Float:
		return fromFloat(key, float64(val))
	case starlark.String:
		return String(string(val)), nil
	case *starlark.List:
		return starlarkSequence(key, val)
	case starlark.Tuple:
		return starlarkSequence(key, val)
	case *starlark.Dict:
		m := NewMapping()
		for _, item := range val.Items() {
			k, ok := item[0].(starlark.String)
			if !ok {
				return Value{}, fmt.Errorf("%s: dict keys must be strings, got %s", key, item[0].Type())
			}
			child, err := fromStarlarkValue(joinKey(key, string(k)), item[1])
			if err != nil {
				return Value{}, err
			}
			m.Set(string(k), child)
		}
		return MappingValue(m), nil
	case *starlarkstruct.Struct:
		m := NewMapping()
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				return Value{}, err
			}
			child, err := fromStarlarkValue(joinKey(key, name), attr)
			if err != nil {
				return Value{}, err
			}
			m.Set(name, child)
		}
		return MappingValue(m), nil
	default:
		return Value{}, engine.NewUnsupportedValueKindError(key, "starlark "+v.Type())
	}
}

func starlarkSequence(key string, seq starlark.Indexable) (Value, error) {
	items := make([]Value, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		item, err := fromStarlarkValue(fmt.Sprintf("%s[%d]", key, i), seq.Index(i))
		if err != nil {
			return Value{}, err
		}
		items[i] = item
	}
	return Sequence(items...), nil
}

// builtinEnv implements env(name, default=None).
func builtinEnv(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var def starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return starlark.String(v), nil
	}
	return def, nil
}
