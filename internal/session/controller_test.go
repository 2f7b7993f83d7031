package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/contract"
	"github.com/framekit/walletwidget/internal/provider"
)

const testAccount = "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"

// fakeProvider implements provider.Provider with scripted responses.
type fakeProvider struct {
	mu       sync.Mutex
	accounts []string
	chainID  string
	txHash   string
	errs     map[string]error
	handlers map[string][]provider.Handler
	txParams any
	block    chan struct{} // when set, Request waits for the channel to close
}

func newFakeProvider(accounts ...string) *fakeProvider {
	return &fakeProvider{
		accounts: accounts,
		chainID:  "0x2105",
		txHash:   "0xf00d",
		errs:     make(map[string]error),
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[method]; err != nil {
		return nil, err
	}
	switch method {
	case provider.MethodAccounts, provider.MethodRequestAccounts:
		return json.Marshal(p.accounts)
	case provider.MethodChainID:
		return json.Marshal(p.chainID)
	case provider.MethodSendTransaction:
		p.txParams = params
		return json.Marshal(p.txHash)
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func (p *fakeProvider) On(event string, h provider.Handler) *provider.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers == nil {
		p.handlers = make(map[string][]provider.Handler)
	}
	p.handlers[event] = append(p.handlers[event], h)
	idx := len(p.handlers[event]) - 1
	return provider.NewSubscription(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.handlers[event][idx] = nil
	})
}

func (p *fakeProvider) emit(event, payload string) {
	p.mu.Lock()
	hs := append([]provider.Handler(nil), p.handlers[event]...)
	p.mu.Unlock()
	for _, h := range hs {
		if h != nil {
			h(json.RawMessage(payload))
		}
	}
}

func (p *fakeProvider) handlerCount(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, h := range p.handlers[event] {
		if h != nil {
			n++
		}
	}
	return n
}

// fakeSource detects whatever provider it currently holds.
type fakeSource struct {
	mu sync.Mutex
	p  provider.Provider
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Detect() provider.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

func (s *fakeSource) set(p provider.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// newBalanceServer serves the read-only chain RPCs used by balance refreshes:
// 1.5 ETH and 1234567 token base units (1.23 at six decimals).
func newBalanceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "eth_getBalance":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x14d1120d7b160000"}`, req.ID)
		case "eth_call":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x000000000000000000000000000000000000000000000000000000000012d687"}`, req.ID)
		default:
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestController(t *testing.T, sources ...provider.Source) (*Controller, *RecordStore) {
	t.Helper()
	srv := newBalanceServer(t)
	rec := NewRecordStore(filepath.Join(t.TempDir(), "session.json"))
	token := contract.Token{Address: "0x036cbd53842c5426634e7929541ec2318f3dcf7e", Symbol: "USDC", Decimals: 6}
	ctrl := NewController(
		provider.NewResolver(sources...),
		func() *chain.Client { return chain.NewClient(srv.URL) },
		token,
		WithRecordStore(rec),
		WithSettleDelay(10*time.Millisecond),
	)
	t.Cleanup(ctrl.Close)
	return ctrl, rec
}

// ---------------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------------

func TestInitializeNoProvider(t *testing.T) {
	ctrl, _ := newTestController(t)

	err := ctrl.Initialize(context.Background())
	require.ErrorIs(t, err, provider.ErrNoProvider)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Equal(t, "no wallet provider found", sess.LastError)
}

func TestInitializeFirstVisitStaysDisconnected(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeSource{p: newFakeProvider()})

	err := ctrl.Initialize(context.Background())
	require.NoError(t, err)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Empty(t, sess.Address)
	assert.Empty(t, sess.LastError)
}

func TestInitializeSilentReconnect(t *testing.T) {
	ctrl, rec := newTestController(t, &fakeSource{p: newFakeProvider(testAccount)})

	err := ctrl.Initialize(context.Background())
	require.NoError(t, err)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusConnected, sess.Status)
	assert.Equal(t, strings.ToLower(testAccount), sess.Address)
	assert.Equal(t, uint64(8453), sess.ChainID)
	assert.Equal(t, "1.5000", sess.ETHBalance)
	assert.Equal(t, "1.23", sess.TokenBalance)

	saved := rec.Load()
	assert.True(t, saved.Connected)
	assert.Equal(t, strings.ToLower(testAccount), saved.Address)
}

func TestInitializeRecordHintRestores(t *testing.T) {
	// No live authorization, but a record from a prior run. The provider
	// grants the interactive request, so the recorded address is adopted.
	p := newFakeProvider()
	ctrl, rec := newTestController(t, &fakeSource{p: p})
	rec.Save(Record{Connected: true, Address: strings.ToLower(testAccount)})

	err := ctrl.Initialize(context.Background())
	require.NoError(t, err)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusConnected, sess.Status)
	assert.Equal(t, strings.ToLower(testAccount), sess.Address)
}

func TestInitializeRecordHintDenied(t *testing.T) {
	p := newFakeProvider()
	p.errs[provider.MethodRequestAccounts] = provider.ErrUserRejected
	ctrl, rec := newTestController(t, &fakeSource{p: p})
	rec.Save(Record{Connected: true, Address: strings.ToLower(testAccount)})

	err := ctrl.Initialize(context.Background())
	require.ErrorIs(t, err, ErrReconnectFailed)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Equal(t, ErrReconnectFailed.Error(), sess.LastError)

	// The stale record must not trigger another prompt on the next run.
	assert.Equal(t, Record{}, rec.Load())
}

func TestInitializeWithoutProviderSkipsSubscriptions(t *testing.T) {
	src := &fakeSource{}
	ctrl, _ := newTestController(t, src)

	err := ctrl.Initialize(context.Background())
	require.ErrorIs(t, err, provider.ErrNoProvider)

	// A provider appearing after the failed initialization must not receive
	// subscriptions from it.
	p := newFakeProvider(testAccount)
	src.set(p)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, p.handlerCount(provider.EventAccountsChanged))
}

func TestInitializeAttachesSubscriptionsAfterSettle(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})

	require.NoError(t, ctrl.Initialize(context.Background()))

	assert.Eventually(t, func() bool {
		return p.handlerCount(provider.EventAccountsChanged) == 1 &&
			p.handlerCount(provider.EventChainChanged) == 1
	}, time.Second, 10*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Connect / Disconnect
// ---------------------------------------------------------------------------

func TestConnect(t *testing.T) {
	ctrl, rec := newTestController(t, &fakeSource{p: newFakeProvider(testAccount)})

	err := ctrl.Connect(context.Background())
	require.NoError(t, err)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusConnected, sess.Status)
	assert.Equal(t, strings.ToLower(testAccount), sess.Address)
	assert.True(t, rec.Load().Connected)
}

func TestConnectNoProvider(t *testing.T) {
	ctrl, _ := newTestController(t)

	err := ctrl.Connect(context.Background())
	require.ErrorIs(t, err, provider.ErrNoProvider)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Equal(t, "no wallet provider found", sess.LastError)
}

func TestConnectRejectedClearsConnecting(t *testing.T) {
	p := newFakeProvider(testAccount)
	p.errs[provider.MethodRequestAccounts] = provider.ErrUserRejected
	ctrl, _ := newTestController(t, &fakeSource{p: p})

	err := ctrl.Connect(context.Background())
	require.ErrorIs(t, err, provider.ErrUserRejected)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Empty(t, sess.Address)
	assert.Contains(t, sess.LastError, "rejected")
}

func TestConnectEmptyAccountList(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeSource{p: newFakeProvider()})

	err := ctrl.Connect(context.Background())
	require.ErrorIs(t, err, ErrNoAccounts)
	assert.Equal(t, StatusDisconnected, ctrl.Snapshot().Status)
}

func TestConnectWhileAttemptInFlight(t *testing.T) {
	p := newFakeProvider(testAccount)
	p.block = make(chan struct{})
	ctrl, _ := newTestController(t, &fakeSource{p: p})

	done := make(chan error, 1)
	go func() { done <- ctrl.Connect(context.Background()) }()

	// Wait for the first attempt to take the latch.
	assert.Eventually(t, func() bool {
		return ctrl.Snapshot().Status == StatusConnecting
	}, time.Second, 5*time.Millisecond)

	err := ctrl.Connect(context.Background())
	assert.ErrorIs(t, err, ErrAttemptInFlight)
	err = ctrl.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	close(p.block)
	require.NoError(t, <-done)
	assert.Equal(t, StatusConnected, ctrl.Snapshot().Status)
}

func TestDisconnect(t *testing.T) {
	ctrl, rec := newTestController(t, &fakeSource{p: newFakeProvider(testAccount)})
	require.NoError(t, ctrl.Connect(context.Background()))

	ctrl.Disconnect()

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Empty(t, sess.Address)
	assert.Empty(t, sess.ETHBalance)
	assert.Empty(t, sess.TokenBalance)
	assert.Equal(t, Record{}, rec.Load())
}

// ---------------------------------------------------------------------------
// change events
// ---------------------------------------------------------------------------

func TestAccountsChangedToEmptyDisconnects(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, rec := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Initialize(context.Background()))
	require.Eventually(t, func() bool {
		return p.handlerCount(provider.EventAccountsChanged) == 1
	}, time.Second, 10*time.Millisecond)

	p.emit(provider.EventAccountsChanged, `[]`)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusDisconnected, sess.Status)
	assert.Empty(t, sess.Address)
	assert.Empty(t, sess.ETHBalance)
	assert.Empty(t, sess.TokenBalance)
	assert.Equal(t, Record{}, rec.Load())
}

func TestAccountsChangedAdoptsNewAccount(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, rec := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Initialize(context.Background()))
	require.Eventually(t, func() bool {
		return p.handlerCount(provider.EventAccountsChanged) == 1
	}, time.Second, 10*time.Millisecond)

	p.emit(provider.EventAccountsChanged, `["0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0"]`)

	sess := ctrl.Snapshot()
	assert.Equal(t, StatusConnected, sess.Status)
	assert.Equal(t, "0xffcf8fdee72ac11b5c542428b35eef5769c409f0", sess.Address)
	assert.Equal(t, "0xffcf8fdee72ac11b5c542428b35eef5769c409f0", rec.Load().Address)
}

func TestChainChangedUpdatesChainID(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Initialize(context.Background()))
	require.Eventually(t, func() bool {
		return p.handlerCount(provider.EventChainChanged) == 1
	}, time.Second, 10*time.Millisecond)

	p.emit(provider.EventChainChanged, `"0x14a34"`)
	assert.Equal(t, uint64(84532), ctrl.Snapshot().ChainID)
}

func TestCloseMakesLateEventsNoops(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Initialize(context.Background()))
	require.Eventually(t, func() bool {
		return p.handlerCount(provider.EventAccountsChanged) == 1
	}, time.Second, 10*time.Millisecond)

	before := ctrl.Snapshot()
	ctrl.Close()

	assert.Zero(t, p.handlerCount(provider.EventAccountsChanged))
	assert.Zero(t, p.handlerCount(provider.EventChainChanged))

	// A handler captured before teardown must not write through.
	ctrl.handleAccountsChanged(json.RawMessage(`[]`))
	assert.Equal(t, before, ctrl.Snapshot())
}

// ---------------------------------------------------------------------------
// SendTransfer
// ---------------------------------------------------------------------------

func TestSendTransferNotConnected(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeSource{p: newFakeProvider(testAccount)})

	_, err := ctrl.SendTransfer(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendTransfer(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Connect(context.Background()))

	hash, err := ctrl.SendTransfer(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "0xf00d", hash)

	p.mu.Lock()
	params, ok := p.txParams.([]any)
	p.mu.Unlock()
	require.True(t, ok)
	require.Len(t, params, 1)
	tx, ok := params[0].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, strings.ToLower(testAccount), tx["from"])
	assert.Equal(t, "0x036cbd53842c5426634e7929541ec2318f3dcf7e", tx["to"])
	assert.True(t, strings.HasPrefix(tx["data"], "0xa9059cbb"))
	// 10000 base units = 0.01 at six decimals.
	assert.True(t, strings.HasSuffix(tx["data"], "2710"))
}

func TestSendTransferDenied(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Connect(context.Background()))

	p.mu.Lock()
	p.errs[provider.MethodSendTransaction] = provider.ErrUserRejected
	p.mu.Unlock()

	_, err := ctrl.SendTransfer(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "please approve the transaction in your wallet", err.Error())
}

func TestSendTransferDeniedByMessage(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Connect(context.Background()))

	p.mu.Lock()
	p.errs[provider.MethodSendTransaction] = errors.New("user denied transaction signature")
	p.mu.Unlock()

	_, err := ctrl.SendTransfer(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "please approve the transaction in your wallet", err.Error())
}

func TestSendTransferOtherErrorPassesThrough(t *testing.T) {
	p := newFakeProvider(testAccount)
	ctrl, _ := newTestController(t, &fakeSource{p: p})
	require.NoError(t, ctrl.Connect(context.Background()))

	p.mu.Lock()
	p.errs[provider.MethodSendTransaction] = errors.New("insufficient funds for gas")
	p.mu.Unlock()

	_, err := ctrl.SendTransfer(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
}

// ---------------------------------------------------------------------------
// balance refresh
// ---------------------------------------------------------------------------

func TestFetchBalancesWithoutAddressIsNoop(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeSource{p: newFakeProvider()})

	ctrl.RefreshBalances(context.Background())

	sess := ctrl.Snapshot()
	assert.Empty(t, sess.ETHBalance)
	assert.Empty(t, sess.TokenBalance)
}

func TestRefreshBalancesFormatting(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeSource{p: newFakeProvider(testAccount)})
	require.NoError(t, ctrl.Connect(context.Background()))

	// Connect already refreshed once; a second refresh must land on the
	// same values.
	ctrl.RefreshBalances(context.Background())

	sess := ctrl.Snapshot()
	assert.Equal(t, "1.5000", sess.ETHBalance)
	assert.Equal(t, "1.23", sess.TokenBalance)
}

// ---------------------------------------------------------------------------
// onChange observer
// ---------------------------------------------------------------------------

func TestOnChangeReceivesSnapshots(t *testing.T) {
	var mu sync.Mutex
	var last Session

	srv := newBalanceServer(t)
	rec := NewRecordStore(filepath.Join(t.TempDir(), "session.json"))
	ctrl := NewController(
		provider.NewResolver(&fakeSource{p: newFakeProvider(testAccount)}),
		func() *chain.Client { return chain.NewClient(srv.URL) },
		contract.Token{Address: "0x036cbd53842c5426634e7929541ec2318f3dcf7e", Symbol: "USDC", Decimals: 6},
		WithRecordStore(rec),
		WithSettleDelay(10*time.Millisecond),
		WithOnChange(func(s Session) {
			mu.Lock()
			last = s
			mu.Unlock()
		}),
	)
	t.Cleanup(ctrl.Close)

	require.NoError(t, ctrl.Connect(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, StatusConnected, last.Status)
	assert.Equal(t, strings.ToLower(testAccount), last.Address)
}
