package provider

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/framekit/walletwidget/internal/chain"
	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/wallet"
)

// Authorizer decides an interactive authorization request for the local
// provider. The CLI wires a terminal prompt; tests wire a constant.
type Authorizer func(address string) bool

// Local is a provider backed by the on-disk keystore. It plays the role a
// wallet extension plays in a browser: it answers account queries for the
// default signing wallet, asks the user before granting access, and signs
// and broadcasts transactions itself.
type Local struct {
	mgr       *wallet.Manager
	client    func() *chain.Client
	chainID   uint64
	authorize Authorizer

	events emitter

	mu      sync.Mutex
	granted bool
}

// NewLocal creates a Local provider. client is called per broadcast so the
// endpoint can rotate between calls.
func NewLocal(mgr *wallet.Manager, client func() *chain.Client, chainID uint64, authorize Authorizer) *Local {
	return &Local{
		mgr:       mgr,
		client:    client,
		chainID:   chainID,
		authorize: authorize,
	}
}

func (l *Local) Name() string { return "local-keystore" }

// On subscribes a handler for provider events.
func (l *Local) On(event string, h Handler) *Subscription {
	return l.events.on(event, h)
}

// Request dispatches one wallet RPC call against the local keystore.
func (l *Local) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	switch method {
	case MethodAccounts:
		return json.Marshal(l.accounts())

	case MethodRequestAccounts:
		return l.requestAccounts()

	case MethodChainID:
		return json.Marshal(fmt.Sprintf("0x%x", l.chainID))

	case MethodSendTransaction:
		return l.sendTransaction(ctx, params)

	default:
		return nil, fmt.Errorf("method %s not supported by local provider", method)
	}
}

// Revoke withdraws the authorization grant and notifies subscribers with an
// empty account list.
func (l *Local) Revoke() {
	l.mu.Lock()
	l.granted = false
	l.mu.Unlock()
	payload, _ := json.Marshal([]string{})
	l.events.emit(EventAccountsChanged, payload)
}

// accounts returns the authorized account list without prompting.
func (l *Local) accounts() []string {
	l.mu.Lock()
	granted := l.granted
	l.mu.Unlock()
	if !granted {
		return []string{}
	}
	w := l.defaultSigning()
	if w == nil {
		return []string{}
	}
	return []string{w.Address}
}

func (l *Local) requestAccounts() (json.RawMessage, error) {
	w := l.defaultSigning()
	if w == nil {
		return nil, fmt.Errorf("no signing wallet configured")
	}

	l.mu.Lock()
	granted := l.granted
	l.mu.Unlock()

	if !granted {
		if l.authorize == nil || !l.authorize(w.Address) {
			return nil, ErrUserRejected
		}
		l.mu.Lock()
		l.granted = true
		l.mu.Unlock()
		payload, _ := json.Marshal([]string{w.Address})
		l.events.emit(EventAccountsChanged, payload)
	}

	return json.Marshal([]string{w.Address})
}

// txParams mirrors the transaction object of an eth_sendTransaction request.
type txParams struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
}

func (l *Local) sendTransaction(ctx context.Context, params any) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var list []txParams
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil, fmt.Errorf("eth_sendTransaction expects one transaction object")
	}
	tp := list[0]

	w := l.defaultSigning()
	if w == nil {
		return nil, fmt.Errorf("no signing wallet configured")
	}
	if tp.From != "" && !strings.EqualFold(tp.From, w.Address) {
		return nil, fmt.Errorf("from address %s does not match signing wallet", tp.From)
	}

	client := l.client()

	value := big.NewInt(0)
	if tp.Value != "" {
		v, ok := new(big.Int).SetString(strings.TrimPrefix(tp.Value, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("invalid value: %s", tp.Value)
		}
		value = v
	}

	gasPrice, err := client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	gas, err := client.EstimateGas(ctx, w.Address, tp.To, tp.Data, value)
	if err != nil {
		gas = config.GasLimitERC20Transfer // fallback
	}

	nonce, err := client.GetPendingNonce(ctx, w.Address)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := common.HexToAddress(tp.To)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(l.chainID),
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     value,
		Data:      decodeHex(tp.Data),
	})

	signer := wallet.NewSigner(w, l.mgr.Keystore())
	signed, err := signer.SignTx(tx, new(big.Int).SetUint64(l.chainID))
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(signed))
	if err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	return json.Marshal(hash)
}

func (l *Local) defaultSigning() *wallet.Wallet {
	w := l.mgr.Default()
	if w == nil || w.Type != wallet.TypeSigning {
		return nil
	}
	return w
}

func decodeHex(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// LocalSource exposes a Local provider only when a default signing wallet
// exists, mirroring "extension installed" detection.
type LocalSource struct {
	Local *Local
}

func (s *LocalSource) Name() string { return "local-keystore" }

func (s *LocalSource) Detect() Provider {
	if s.Local == nil {
		return nil
	}
	if s.Local.defaultSigning() == nil {
		return nil
	}
	return s.Local
}
