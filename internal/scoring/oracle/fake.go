package oracle

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Fake is a deterministic in-process oracle. Responses are chosen by the
// first rule whose substring appears in the prompt; otherwise Default is
// returned. A non-nil Err fails every call.
type Fake struct {
	mu      sync.Mutex
	rules   []fakeRule
	Default string
	Err     error
	Delay   time.Duration
	calls   atomic.Int64
}

type fakeRule struct {
	contains string
	response string
}

func NewFake(defaultResponse string) *Fake {
	return &Fake{Default: defaultResponse}
}

// On registers response for prompts containing substr.
func (f *Fake) On(substr, response string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{contains: substr, response: response})
	return f
}

// Calls reports how many prompts reached the fake.
func (f *Fake) Calls() int64 {
	return f.calls.Load()
}

func (f *Fake) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if strings.Contains(prompt, r.contains) {
			return r.response, nil
		}
	}
	return f.Default, nil
}
