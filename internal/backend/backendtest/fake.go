// Package backendtest provides an in-memory backend.API for tests.
package backendtest

import (
	"context"
	"sync"

	"github.com/sp-meter/circles/internal/backend"
)

// Call records one request made against a Fake.
type Call struct {
	Endpoint string // "info" or "result"
	UnitID   string
	FromID   string
	ToID     string
	Value    string
}

// Fake is a scripted backend.API. Responses are looked up by unit id (info)
// or by from/to pair (result); InfoErr/ConvertErr force failures. When Gate
// is set every call blocks until a value is sent on it or ctx ends.
type Fake struct {
	mu          sync.Mutex
	calls       []Call
	Infos       map[string]*backend.UnitInfo
	Conversions map[[2]string]*backend.Conversion
	InfoErr     error
	ConvertErr  error
	Gate        chan struct{}
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Infos:       make(map[string]*backend.UnitInfo),
		Conversions: make(map[[2]string]*backend.Conversion),
	}
}

// SetInfo scripts the info response for id.
func (f *Fake) SetInfo(id string, info *backend.UnitInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Infos[id] = info
}

// SetConversion scripts the result response for a from/to pair.
func (f *Fake) SetConversion(fromID, toID string, conv *backend.Conversion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Conversions[[2]string{fromID, toID}] = conv
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many calls were made to endpoint ("" counts all).
func (f *Fake) CallCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if endpoint == "" || c.Endpoint == endpoint {
			n++
		}
	}
	return n
}

func (f *Fake) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.Gate
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info implements backend.API.
func (f *Fake) Info(ctx context.Context, unitID string) (*backend.UnitInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Endpoint: "info", UnitID: unitID})
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InfoErr != nil {
		return nil, f.InfoErr
	}
	if info, ok := f.Infos[unitID]; ok {
		return info, nil
	}
	return &backend.UnitInfo{Name: backend.Text(unitID)}, nil
}

// Convert implements backend.API.
func (f *Fake) Convert(ctx context.Context, fromID, toID, value string) (*backend.Conversion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Endpoint: "result", FromID: fromID, ToID: toID, Value: value})
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConvertErr != nil {
		return nil, f.ConvertErr
	}
	if conv, ok := f.Conversions[[2]string{fromID, toID}]; ok {
		return conv, nil
	}
	return &backend.Conversion{Result: backend.Text(value), Formula: "x = x"}, nil
}
