package pipeline

import (
	"context"
	"fmt"
	"slices"
)

// NodeFunc receives the loaded inputs in declaration order and returns one
// value per declared output.
type NodeFunc func(ctx context.Context, inputs []any) ([]any, error)

type Node struct {
	Name    string
	Func    NodeFunc
	Inputs  []string
	Outputs []string
	Tags    []string
}

func NewNode(name string, fn NodeFunc, inputs, outputs []string, tags ...string) Node {
	return Node{
		Name:    name,
		Func:    fn,
		Inputs:  inputs,
		Outputs: outputs,
		Tags:    tags,
	}
}

func (n Node) HasTag(tags ...string) bool {
	for _, tag := range tags {
		if slices.Contains(n.Tags, tag) {
			return true
		}
	}
	return false
}

// Arg returns input i as a T.
func Arg[T any](inputs []any, i int) (T, error) {
	var zero T
	if i >= len(inputs) {
		return zero, fmt.Errorf("missing input %d", i)
	}
	v, ok := inputs[i].(T)
	if !ok {
		return zero, fmt.Errorf("input %d: expected %T, got %T", i, zero, inputs[i])
	}
	return v, nil
}

func Func1[A, R any](fn func(context.Context, A) (R, error)) NodeFunc {
	return func(ctx context.Context, inputs []any) ([]any, error) {
		a, err := Arg[A](inputs, 0)
		if err != nil {
			return nil, err
		}
		r, err := fn(ctx, a)
		if err != nil {
			return nil, err
		}
		return []any{r}, nil
	}
}

func Func2[A, B, R any](fn func(context.Context, A, B) (R, error)) NodeFunc {
	return func(ctx context.Context, inputs []any) ([]any, error) {
		a, err := Arg[A](inputs, 0)
		if err != nil {
			return nil, err
		}
		b, err := Arg[B](inputs, 1)
		if err != nil {
			return nil, err
		}
		r, err := fn(ctx, a, b)
		if err != nil {
			return nil, err
		}
		return []any{r}, nil
	}
}

func Func3[A, B, C, R any](fn func(context.Context, A, B, C) (R, error)) NodeFunc {
	return func(ctx context.Context, inputs []any) ([]any, error) {
		a, err := Arg[A](inputs, 0)
		if err != nil {
			return nil, err
		}
		b, err := Arg[B](inputs, 1)
		if err != nil {
			return nil, err
		}
		c, err := Arg[C](inputs, 2)
		if err != nil {
			return nil, err
		}
		r, err := fn(ctx, a, b, c)
		if err != nil {
			return nil, err
		}
		return []any{r}, nil
	}
}

// Sink3 adapts a function without outputs, such as an evaluation step that
// only logs.
func Sink3[A, B, C any](fn func(context.Context, A, B, C) error) NodeFunc {
	return func(ctx context.Context, inputs []any) ([]any, error) {
		a, err := Arg[A](inputs, 0)
		if err != nil {
			return nil, err
		}
		b, err := Arg[B](inputs, 1)
		if err != nil {
			return nil, err
		}
		c, err := Arg[C](inputs, 2)
		if err != nil {
			return nil, err
		}
		return nil, fn(ctx, a, b, c)
	}
}
