// Package session owns the widget's wallet connection state machine: the
// connect / silent-reconnect protocol, provider event wiring, balance
// refreshes, and the demo token transfer.
package session

import "errors"

// Status is the wallet connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String renders the status for display.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session is the widget's connection state. A single instance lives inside
// the Controller; callers only ever see copies.
//
// Invariant: Status == StatusConnected exactly when Address is non-empty.
// ChainID is meaningful only while connected. Balances are best-effort
// caches of the last fetch; staleness is expected.
type Session struct {
	Address      string // lowercase hex, empty when disconnected
	ChainID      uint64 // 0 when unknown
	Status       Status
	ETHBalance   string // formatted, empty when unknown
	TokenBalance string // formatted, empty when unknown
	LastError    string
}

// Connected reports whether the session has an active account.
func (s Session) Connected() bool {
	return s.Status == StatusConnected && s.Address != ""
}

// Errors surfaced by Controller operations.
var (
	ErrAttemptInFlight = errors.New("connection attempt already in progress")
	ErrNoAccounts      = errors.New("no accounts returned")
	ErrNotConnected    = errors.New("wallet not connected")
	ErrReconnectFailed = errors.New("could not restore previous session")
)
