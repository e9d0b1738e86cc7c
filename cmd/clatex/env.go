package main

import (
	"context"
	"io"
	"os"

	clatex "github.com/alnah/go-clatex"
)

// Renderer is the part of clatex.Service the build command uses.
type Renderer interface {
	Load(ctx context.Context, src clatex.Source, cfg *clatex.Config) (*clatex.Project, error)
	Render(ctx context.Context, input clatex.Input) (*clatex.Result, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*clatex.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Renderer, error)
	Release(Renderer)
	Size() int
	Close() error
}

// poolAdapter exposes a clatex.ServicePool as a Pool.
type poolAdapter struct {
	pool *clatex.ServicePool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire(ctx context.Context) (Renderer, error) {
	svc, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Release panics if r did not come from Acquire.
func (a *poolAdapter) Release(r Renderer) {
	svc, ok := r.(*clatex.Service)
	if !ok {
		panic("poolAdapter.Release: unexpected type")
	}
	a.pool.Release(svc)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...clatex.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewPool: func(size int, opts ...clatex.Option) Pool {
			return &poolAdapter{pool: clatex.NewServicePool(size, opts...)}
		},
	}
}
