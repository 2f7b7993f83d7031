package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/framekit/walletwidget/internal/session"
)

// widgetModel is the Bubble Tea model for the wallet widget panel.
type widgetModel struct {
	ctrl    *session.Controller
	changes <-chan session.Session

	sess     session.Session
	txHash   string
	notice   string
	busy     bool
	quitting bool
	interval time.Duration
}

type sessionChangedMsg session.Session
type initDoneMsg struct{ err error }
type connectDoneMsg struct{ err error }
type sendDoneMsg struct {
	hash string
	err  error
}
type widgetTickMsg time.Time

// NewWidget creates the wallet widget program. changes must be the channel
// the controller's OnChange callback feeds.
func NewWidget(ctrl *session.Controller, changes <-chan session.Session, interval time.Duration) *tea.Program {
	m := widgetModel{
		ctrl:     ctrl,
		changes:  changes,
		interval: interval,
	}
	return tea.NewProgram(m)
}

func (m widgetModel) Init() tea.Cmd {
	return tea.Batch(m.initCmd(), m.waitChange(), widgetTick(m.interval))
}

func (m widgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.ctrl.Close()
			return m, tea.Quit
		case "c":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.notice = "connecting…"
			return m, m.connectCmd()
		case "s":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.notice = "sending transfer…"
			return m, m.sendCmd()
		case "d":
			m.ctrl.Disconnect()
			m.txHash = ""
			m.notice = ""
			return m, nil
		case "r":
			return m, m.refreshCmd()
		}

	case sessionChangedMsg:
		m.sess = session.Session(msg)
		return m, m.waitChange()

	case initDoneMsg:
		m.sess = m.ctrl.Snapshot()
		return m, nil

	case connectDoneMsg:
		m.busy = false
		m.notice = ""
		m.sess = m.ctrl.Snapshot()
		return m, nil

	case sendDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else {
			m.notice = ""
			m.txHash = msg.hash
		}
		m.sess = m.ctrl.Snapshot()
		return m, nil

	case widgetTickMsg:
		return m, tea.Batch(m.refreshCmd(), widgetTick(m.interval))
	}

	return m, nil
}

func (m widgetModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⬡ Wallet") + "\n")

	status := m.sess.Status
	switch status {
	case session.StatusConnected:
		sb.WriteString(StyleSuccess.Render("● connected") + "\n")
	case session.StatusConnecting:
		sb.WriteString(StyleWarning.Render("◌ connecting") + "\n")
	default:
		sb.WriteString(StyleMeta.Render("○ disconnected") + "\n")
	}

	if m.sess.Address != "" {
		sb.WriteString(StyleMeta.Render("account  ") + Addr(TruncateAddr(m.sess.Address)) + "\n")
	}
	if m.sess.ChainID != 0 {
		sb.WriteString(StyleMeta.Render("chain    ") + StyleAccent.Render(fmt.Sprintf("%d", m.sess.ChainID)) + "\n")
	}
	if m.sess.ETHBalance != "" {
		sb.WriteString(StyleMeta.Render("eth      ") + Val(m.sess.ETHBalance) + "\n")
	}
	if m.sess.TokenBalance != "" {
		sb.WriteString(StyleMeta.Render("usdc     ") + Val(m.sess.TokenBalance) + "\n")
	}
	if m.sess.LastError != "" {
		sb.WriteString(Err(m.sess.LastError) + "\n")
	}
	if m.notice != "" {
		sb.WriteString(StyleWarning.Render(m.notice) + "\n")
	}
	if m.txHash != "" {
		sb.WriteString(StyleMeta.Render("tx       ") + Addr(TruncateAddr(m.txHash)) + "\n")
	}

	sb.WriteString("\n" + StyleMeta.Render("c connect · s send 0.01 USDC · r refresh · d disconnect · q quit"))
	return StyleBorder.Render(sb.String())
}

func (m widgetModel) initCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return initDoneMsg{err: m.ctrl.Initialize(ctx)}
	}
}

func (m widgetModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return connectDoneMsg{err: m.ctrl.Connect(ctx)}
	}
}

func (m widgetModel) sendCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		hash, err := m.ctrl.SendTransfer(ctx, "")
		return sendDoneMsg{hash: hash, err: err}
	}
}

func (m widgetModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m.ctrl.RefreshBalances(ctx)
		return sessionChangedMsg(m.ctrl.Snapshot())
	}
}

func (m widgetModel) waitChange() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.changes
		if !ok {
			return nil
		}
		return sessionChangedMsg(s)
	}
}

func widgetTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return widgetTickMsg(t)
	})
}
