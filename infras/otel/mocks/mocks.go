// Package mocks holds no-op tracing doubles for service tests, where only
// the presence of a scope matters, not what it records.
package mocks

import (
	"context"

	"portal/infras/otel"
)

// NewOtel returns an Otel whose scopes record nothing.
func NewOtel() otel.Otel {
	return &noopOtel{}
}

// NewScope returns a Scope that discards every call.
func NewScope() otel.Scope {
	return &noopScope{}
}

type noopOtel struct{}

func (o *noopOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

type noopScope struct{}

func (s *noopScope) AddEvent(_ string)              {}
func (s *noopScope) End()                           {}
func (s *noopScope) SetAttribute(_ string, _ any)   {}
func (s *noopScope) SetAttributes(_ map[string]any) {}
func (s *noopScope) TraceError(_ error)             {}
func (s *noopScope) TraceIfError(_ error)           {}
