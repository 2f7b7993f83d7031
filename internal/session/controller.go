package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/contract"
	"github.com/framekit/walletwidget/internal/provider"
)

const errNoProviderMsg = "no wallet provider found"

// Controller drives the wallet session. All state writes funnel through a
// single mutex-guarded mutate step, and the connect / silent-reconnect
// operations additionally hold a one-slot attempt latch so two overlapping
// attempts can never interleave their writes.
type Controller struct {
	resolver *provider.Resolver
	record   *RecordStore
	client   func() *chain.Client
	token    contract.Token

	settleDelay time.Duration
	rpcTimeout  time.Duration
	logf        func(format string, args ...any)
	onChange    func(Session)

	attempt chan struct{}

	mu     sync.Mutex
	sess   Session
	closed bool
	subs   []*provider.Subscription
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRecordStore sets the persisted-record store (tests use a temp path).
func WithRecordStore(rs *RecordStore) ControllerOption {
	return func(c *Controller) { c.record = rs }
}

// WithSettleDelay overrides the delay before event subscriptions attach.
func WithSettleDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.settleDelay = d }
}

// WithLogf sets the sink for background-failure logging.
func WithLogf(logf func(format string, args ...any)) ControllerOption {
	return func(c *Controller) { c.logf = logf }
}

// WithOnChange registers a callback invoked with a session snapshot after
// every state change.
func WithOnChange(fn func(Session)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a Controller. client is invoked per read so the RPC
// endpoint can rotate between calls.
func NewController(resolver *provider.Resolver, client func() *chain.Client, token contract.Token, opts ...ControllerOption) *Controller {
	c := &Controller{
		resolver:    resolver,
		client:      client,
		token:       token,
		settleDelay: config.HostSettleDelay,
		rpcTimeout:  config.RPCTimeout,
		logf:        func(string, ...any) {},
		attempt:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.record == nil {
		c.record = DefaultRecordStore()
	}
	return c
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Initialize runs once when the widget becomes visible: it attempts a silent
// reconnection from the persisted record, then (after the settle delay, to
// give a late-loading frame host time to announce its endpoint) re-resolves
// the provider and attaches the change-event subscriptions.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.beginAttempt() {
		return ErrAttemptInFlight
	}
	err := c.initialize(ctx)
	c.endAttempt()

	// Without any provider there is nothing to subscribe to.
	if !errors.Is(err, provider.ErrNoProvider) {
		c.scheduleSubscriptions(ctx)
	}
	return err
}

func (c *Controller) initialize(ctx context.Context) error {
	rec := c.record.Load()

	p, err := c.resolver.Resolve()
	if err != nil {
		c.mutate(func(s *Session) {
			s.Status = StatusDisconnected
			s.LastError = errNoProviderMsg
		})
		return err
	}

	accounts, err := c.accountList(ctx, p, provider.MethodAccounts)
	if err != nil {
		c.logf("account query failed: %v", err)
		accounts = nil
	}

	switch {
	case len(accounts) > 0:
		// Already authorized: reconnect silently.
		c.adopt(ctx, p, accounts[0])

	case rec.Connected && rec.Address != "":
		// The record claims a prior session; ask the live provider to
		// restore it. The record is a hint, never proof.
		if _, err := c.accountList(ctx, p, provider.MethodRequestAccounts); err != nil {
			c.record.Clear()
			c.mutate(func(s *Session) {
				s.Status = StatusDisconnected
				s.LastError = ErrReconnectFailed.Error()
			})
			return fmt.Errorf("%w: %v", ErrReconnectFailed, err)
		}
		c.adopt(ctx, p, rec.Address)

	default:
		// First-time visitor: stay disconnected without an error.
	}
	return nil
}

// Connect is the user-initiated connection. It may prompt the wallet's own
// UI. The Connecting status is cleared exactly once on every exit path.
func (c *Controller) Connect(ctx context.Context) error {
	if !c.beginAttempt() {
		return ErrAttemptInFlight
	}
	defer c.endAttempt()

	c.mutate(func(s *Session) {
		s.Status = StatusConnecting
		s.LastError = ""
	})
	defer c.mutate(func(s *Session) {
		if s.Status == StatusConnecting {
			s.Status = StatusDisconnected
		}
	})

	p, err := c.resolver.Resolve()
	if err != nil {
		c.mutate(func(s *Session) {
			s.Address = ""
			s.Status = StatusDisconnected
			s.LastError = errNoProviderMsg
		})
		return err
	}

	accounts, err := c.accountList(ctx, p, provider.MethodRequestAccounts)
	if err != nil {
		c.mutate(func(s *Session) {
			s.Address = ""
			s.Status = StatusDisconnected
			s.LastError = err.Error()
		})
		return err
	}
	if len(accounts) == 0 {
		c.mutate(func(s *Session) {
			s.Address = ""
			s.Status = StatusDisconnected
			s.LastError = ErrNoAccounts.Error()
		})
		return ErrNoAccounts
	}

	c.adopt(ctx, p, accounts[0])
	return nil
}

// Disconnect clears the session and the persisted record.
func (c *Controller) Disconnect() {
	c.record.Clear()
	c.mutate(func(s *Session) {
		s.Address = ""
		s.ChainID = 0
		s.Status = StatusDisconnected
		s.ETHBalance = ""
		s.TokenBalance = ""
		s.LastError = ""
	})
}

// FetchETHBalance refreshes the native balance for the connected address.
// Failures are logged, never surfaced: a background refresh must not mask a
// connection error. Safe to call repeatedly; last write wins.
func (c *Controller) FetchETHBalance(ctx context.Context) {
	addr := c.Snapshot().Address
	if addr == "" {
		return
	}
	if _, err := c.resolver.Resolve(); err != nil {
		c.logf("balance refresh skipped: %v", err)
		return
	}
	wei, err := c.client().GetBalance(ctx, addr)
	if err != nil {
		c.logf("eth balance fetch failed: %v", err)
		return
	}
	v := chain.FormatUnits(wei, config.NativeDecimals, config.NativePlaces)
	c.mutate(func(s *Session) { s.ETHBalance = v })
}

// FetchTokenBalance refreshes the token balance for the connected address.
// Same failure policy as FetchETHBalance.
func (c *Controller) FetchTokenBalance(ctx context.Context) {
	addr := c.Snapshot().Address
	if addr == "" {
		return
	}
	if _, err := c.resolver.Resolve(); err != nil {
		c.logf("balance refresh skipped: %v", err)
		return
	}
	raw, err := c.token.BalanceOf(ctx, c.client(), addr)
	if err != nil {
		c.logf("token balance fetch failed: %v", err)
		return
	}
	v := chain.FormatUnits(raw, c.token.Decimals, config.TokenPlaces)
	c.mutate(func(s *Session) { s.TokenBalance = v })
}

// RefreshBalances fetches both balances.
func (c *Controller) RefreshBalances(ctx context.Context) {
	c.FetchETHBalance(ctx)
	c.FetchTokenBalance(ctx)
}

// SendTransfer submits the fixed demo token transfer through the resolved
// provider and returns the transaction hash. to defaults to the connected
// address itself.
func (c *Controller) SendTransfer(ctx context.Context, to string) (string, error) {
	sess := c.Snapshot()
	if !sess.Connected() {
		return "", ErrNotConnected
	}

	p, err := c.resolver.Resolve()
	if err != nil {
		return "", err
	}

	// Only prompt when authorization has actually lapsed.
	accounts, err := c.accountList(ctx, p, provider.MethodAccounts)
	if err == nil && len(accounts) == 0 {
		accounts, err = c.accountList(ctx, p, provider.MethodRequestAccounts)
	}
	if err != nil {
		return "", classifyTransferErr(err)
	}
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}
	from := strings.ToLower(accounts[0])

	if to == "" {
		to = sess.Address
	}

	amount := big.NewInt(config.DemoTransferUnits)
	params := []any{map[string]string{
		"from": from,
		"to":   c.token.Address,
		"data": c.token.TransferCalldata(to, amount),
	}}

	raw, err := p.Request(ctx, provider.MethodSendTransaction, params)
	if err != nil {
		return "", classifyTransferErr(err)
	}
	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", fmt.Errorf("parsing transaction hash: %w", err)
	}

	c.FetchTokenBalance(ctx)
	return hash, nil
}

// Close tears the controller down: subscriptions are detached through their
// handles and any late completion of an in-flight request becomes a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}

// --- event handlers ---

func (c *Controller) handleAccountsChanged(payload json.RawMessage) {
	var accounts []string
	if err := json.Unmarshal(payload, &accounts); err != nil {
		c.logf("bad accountsChanged payload: %v", err)
		return
	}

	if len(accounts) == 0 {
		c.record.Clear()
		c.mutate(func(s *Session) {
			s.Address = ""
			s.ChainID = 0
			s.Status = StatusDisconnected
			s.ETHBalance = ""
			s.TokenBalance = ""
		})
		return
	}

	address := strings.ToLower(accounts[0])
	c.mutate(func(s *Session) {
		s.Address = address
		s.Status = StatusConnected
		s.LastError = ""
	})
	c.record.Save(Record{Connected: true, Address: address})

	ctx, cancel := context.WithTimeout(context.Background(), c.rpcTimeout)
	defer cancel()
	c.RefreshBalances(ctx)
}

func (c *Controller) handleChainChanged(payload json.RawMessage) {
	var hexID string
	if err := json.Unmarshal(payload, &hexID); err != nil {
		c.logf("bad chainChanged payload: %v", err)
		return
	}
	id, ok := chain.ParseHexQuantity(hexID)
	if !ok {
		c.logf("bad chainChanged id: %s", hexID)
		return
	}
	c.mutate(func(s *Session) { s.ChainID = id })

	// Balances are chain-scoped.
	if c.Snapshot().Connected() {
		ctx, cancel := context.WithTimeout(context.Background(), c.rpcTimeout)
		defer cancel()
		c.RefreshBalances(ctx)
	}
}

// --- internals ---

// adopt installs an account as the connected address, persists the record,
// and refreshes chain id and balances.
func (c *Controller) adopt(ctx context.Context, p provider.Provider, address string) {
	address = strings.ToLower(address)
	c.mutate(func(s *Session) {
		s.Address = address
		s.Status = StatusConnected
		s.LastError = ""
	})
	c.record.Save(Record{Connected: true, Address: address})

	if id, err := c.queryChainID(ctx, p); err == nil {
		c.mutate(func(s *Session) { s.ChainID = id })
	} else {
		c.logf("chain id query failed: %v", err)
	}

	c.RefreshBalances(ctx)
}

func (c *Controller) accountList(ctx context.Context, p provider.Provider, method string) ([]string, error) {
	raw, err := p.Request(ctx, method, []any{})
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("parsing account list: %w", err)
	}
	return accounts, nil
}

func (c *Controller) queryChainID(ctx context.Context, p provider.Provider) (uint64, error) {
	raw, err := p.Request(ctx, provider.MethodChainID, []any{})
	if err != nil {
		return 0, err
	}
	var hexID string
	if err := json.Unmarshal(raw, &hexID); err != nil {
		return 0, err
	}
	id, ok := chain.ParseHexQuantity(hexID)
	if !ok {
		return 0, fmt.Errorf("could not parse chain id: %s", hexID)
	}
	return id, nil
}

// scheduleSubscriptions attaches the event handlers once the settle delay
// has elapsed.
func (c *Controller) scheduleSubscriptions(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.settleDelay):
		}
		c.attachSubscriptions()
	}()
}

func (c *Controller) attachSubscriptions() {
	p, err := c.resolver.Resolve()
	if err != nil {
		c.logf("no provider to subscribe to: %v", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.subs
	c.mu.Unlock()
	for _, s := range old {
		s.Unsubscribe()
	}

	accSub := p.On(provider.EventAccountsChanged, c.handleAccountsChanged)
	chainSub := p.On(provider.EventChainChanged, c.handleChainChanged)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		accSub.Unsubscribe()
		chainSub.Unsubscribe()
		return
	}
	c.subs = []*provider.Subscription{accSub, chainSub}
	c.mu.Unlock()
}

// mutate applies one state change under the lock and notifies the observer.
// After Close it is a no-op, so stragglers cannot write to a torn-down
// session.
func (c *Controller) mutate(f func(*Session)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	f(&c.sess)
	snap := c.sess
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

func (c *Controller) beginAttempt() bool {
	select {
	case c.attempt <- struct{}{}:
		return true
	default:
		return false
	}
}

func (c *Controller) endAttempt() {
	<-c.attempt
}

// classifyTransferErr distinguishes a user denial from other provider
// failures by message content; the provider boundary gives no structured
// error codes.
func classifyTransferErr(err error) error {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, provider.ErrUserRejected) ||
		strings.Contains(msg, "denied") || strings.Contains(msg, "rejected") {
		return errors.New("please approve the transaction in your wallet")
	}
	return err
}
