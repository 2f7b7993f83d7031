// Package provider abstracts where the widget's wallet RPC access comes from.
//
// A running widget may be embedded in a frame host that announces its own
// wallet endpoint, sit next to a local keystore, or be configured with a list
// of external wallet endpoints. The Resolver decides, per call, which of
// those is authoritative.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Wallet RPC methods used by the session controller.
const (
	MethodAccounts        = "eth_accounts"        // non-interactive, never prompts
	MethodRequestAccounts = "eth_requestAccounts" // interactive authorization
	MethodChainID         = "eth_chainId"
	MethodSendTransaction = "eth_sendTransaction"
)

// Provider-emitted events.
const (
	EventAccountsChanged = "accountsChanged" // payload: JSON array of addresses
	EventChainChanged    = "chainChanged"    // payload: JSON hex chain id string
)

// ErrUserRejected is returned when an interactive request is denied.
var ErrUserRejected = errors.New("user rejected the request")

// Handler receives an event payload.
type Handler func(payload json.RawMessage)

// Provider supplies wallet RPC access for one account-holding agent.
type Provider interface {
	Name() string
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
	On(event string, h Handler) *Subscription
}

// Subscription is a handle for one registered event handler. Detaching goes
// through the handle, never through handler identity.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps a cancel function in a handle. Exposed for provider
// implementations outside this package (and test fakes).
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// emitter is a small event hub shared by the provider implementations.
type emitter struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]Handler
}

func (e *emitter) on(event string, h Handler) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[string]map[int]Handler)
	}
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]Handler)
	}
	id := e.next
	e.next++
	e.subs[event][id] = h
	return &Subscription{cancel: func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[event], id)
	}}
}

// emit calls every handler registered for event. Handlers run on the
// caller's goroutine.
func (e *emitter) emit(event string, payload json.RawMessage) {
	e.mu.Lock()
	handlers := make([]Handler, 0, len(e.subs[event]))
	for _, h := range e.subs[event] {
		handlers = append(handlers, h)
	}
	e.mu.Unlock()
	for _, h := range handlers {
		h(payload)
	}
}

func (e *emitter) active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.subs {
		if len(m) > 0 {
			return true
		}
	}
	return false
}
