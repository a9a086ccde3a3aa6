// Package rpc names the todo handlers as remote procedures so that every
// transport (HTTP, websocket) dispatches through the same table.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"todo_app/internal/domain"
)

type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

var (
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrBadInput         = errors.New("bad input")
)

type HandlerFunc func(ctx context.Context, input json.RawMessage) (any, error)

type Procedure struct {
	Name    string
	Kind    Kind
	Handler HandlerFunc
}

type Registry struct {
	procs map[string]Procedure
}

func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Procedure)}
}

// Register panics on a duplicate name; registration happens at start-up.
func (r *Registry) Register(name string, kind Kind, h HandlerFunc) {
	if _, exists := r.procs[name]; exists {
		panic("rpc: procedure registered twice: " + name)
	}
	r.procs[name] = Procedure{Name: name, Kind: kind, Handler: h}
}

func (r *Registry) Lookup(name string) (Procedure, bool) {
	p, ok := r.procs[name]
	return p, ok
}

// Names returns the registered procedures in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.procs))
	for n := range r.procs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call runs the named procedure and records metrics under transport.
func (r *Registry) Call(ctx context.Context, transport, name string, input json.RawMessage) (any, error) {
	p, ok := r.Lookup(name)
	if !ok {
		CallsTotal.WithLabelValues("unknown", transport, outcome(ErrUnknownProcedure)).Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}

	start := time.Now()
	out, err := p.Handler(ctx, input)
	CallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	CallsTotal.WithLabelValues(name, transport, outcome(err)).Inc()
	return out, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ErrUnknownProcedure):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, ErrBadInput):
		return "invalid"
	default:
		return "error"
	}
}

// decodeInput unmarshals raw into T. Empty input and JSON null give the zero value.
func decodeInput[T any](raw json.RawMessage) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return v, nil
}

// PublicMessage is the error text safe to send to a client. Store failures
// are reduced to "internal error".
func PublicMessage(err error) string {
	if outcome(err) == "error" {
		return "internal error"
	}
	return err.Error()
}
