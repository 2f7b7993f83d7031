package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"
)

// Remote is a provider backed by a wallet JSON-RPC endpoint. It serves both
// the frame-host endpoint and configured external endpoints.
//
// Remote endpoints have no push channel, so account and chain change events
// are synthesized by polling eth_accounts / eth_chainId and emitting diffs.
type Remote struct {
	name string
	url  string
	http *http.Client

	events       emitter
	pollInterval time.Duration

	mu      sync.Mutex
	polling bool

	lastAccounts []string
	lastChain    string
}

// NewRemote creates a Remote provider for a wallet endpoint.
func NewRemote(name, url string, pollInterval time.Duration) *Remote {
	return &Remote{
		name: name,
		url:  url,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		pollInterval: pollInterval,
	}
}

// Name identifies the provider for display and logging.
func (r *Remote) Name() string { return r.name }

// URL returns the endpoint URL.
func (r *Remote) URL() string { return r.url }

// Request performs one wallet RPC call.
func (r *Remote) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wallet RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		// 4001 is the standard user-rejection code.
		if rpcResp.Error.Code == 4001 {
			return nil, fmt.Errorf("%w: %s", ErrUserRejected, rpcResp.Error.Message)
		}
		return nil, fmt.Errorf("wallet RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// On subscribes a handler and starts the change poller if needed.
func (r *Remote) On(event string, h Handler) *Subscription {
	sub := r.events.on(event, h)
	r.startPolling()
	return sub
}

func (r *Remote) startPolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.polling {
		return
	}
	r.polling = true
	go r.pollLoop()
}

// pollLoop diffs eth_accounts / eth_chainId against the last observation and
// emits change events. Exits once every subscription has been detached.
func (r *Remote) pollLoop() {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !r.events.active() {
			r.mu.Lock()
			r.polling = false
			r.mu.Unlock()
			return
		}
		r.pollOnce()
	}
}

func (r *Remote) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.pollInterval)
	defer cancel()

	if raw, err := r.Request(ctx, MethodAccounts, []any{}); err == nil {
		var accounts []string
		if json.Unmarshal(raw, &accounts) == nil {
			r.mu.Lock()
			changed := !slices.Equal(accounts, r.lastAccounts)
			r.lastAccounts = accounts
			r.mu.Unlock()
			if changed {
				r.events.emit(EventAccountsChanged, raw)
			}
		}
	}

	if raw, err := r.Request(ctx, MethodChainID, []any{}); err == nil {
		var chain string
		if json.Unmarshal(raw, &chain) == nil {
			r.mu.Lock()
			changed := r.lastChain != "" && chain != r.lastChain
			r.lastChain = chain
			r.mu.Unlock()
			if changed {
				r.events.emit(EventChainChanged, raw)
			}
		}
	}
}
