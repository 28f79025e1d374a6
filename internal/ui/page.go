package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/dmint/internal/dapp"
)

// Actions is what the page drives. *dapp.App implements it.
type Actions interface {
	Start(ctx context.Context) error
	Refresh(ctx context.Context) error
	Mint(ctx context.Context) error
	Deposit(ctx context.Context, amount string) error
	ClearError()
	Updates() <-chan dapp.State
}

// PageConfig holds the static parts of the page.
type PageConfig struct {
	Network       string
	ChainID       int64
	TokenUnit     string
	MintAmount    string
	DepositAmount string
	TxURL         func(hash string) string // explorer link, may return ""
	// AutoStart connects the wallet when the page starts. Leave it off when
	// the caller connected already, e.g. to prompt before the TUI owns stdin.
	AutoStart bool
}

// StateMsg carries a new dapp.State into the model.
type StateMsg dapp.State

// actionDoneMsg reports that an action call returned.
type actionDoneMsg struct {
	action string
	err    error
}

type pageTickMsg struct{}

// PageModel is the Bubble Tea model of the deposit/mint page.
type PageModel struct {
	ctx      context.Context
	actions  Actions
	cfg      PageConfig
	state    dapp.State
	inflight bool // an action was dispatched and has not returned yet
	started  bool
	frame    int
	flash    string
	quitting bool
}

// NewPage builds the page model. ctx bounds every action it starts.
func NewPage(ctx context.Context, actions Actions, cfg PageConfig) PageModel {
	if cfg.TxURL == nil {
		cfg.TxURL = func(string) string { return "" }
	}
	return PageModel{ctx: ctx, actions: actions, cfg: cfg, started: !cfg.AutoStart}
}

// State returns the last state the page rendered.
func (m PageModel) State() dapp.State { return m.state }

func (m PageModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForState(), pageTick()}
	if m.cfg.AutoStart {
		cmds = append(cmds, m.run("connect", m.actions.Start))
	}
	return tea.Batch(cmds...)
}

func (m PageModel) waitForState() tea.Cmd {
	ch := m.actions.Updates()
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return StateMsg(s)
	}
}

func (m PageModel) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func pageTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return pageTickMsg{} })
}

// canAct reports whether a state-changing action may start.
func (m PageModel) canAct() bool {
	return m.state.Session != nil && !m.state.Busy() && !m.inflight
}

func (m PageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "m":
			if !m.canAct() {
				return m, nil
			}
			m.inflight = true
			return m, m.run("mint", m.actions.Mint)
		case "d":
			if !m.canAct() {
				return m, nil
			}
			m.inflight = true
			amount := m.cfg.DepositAmount
			return m, m.run("deposit", func(ctx context.Context) error {
				return m.actions.Deposit(ctx, amount)
			})
		case "r":
			if !m.canAct() {
				return m, nil
			}
			m.inflight = true
			return m, m.run("refresh", m.actions.Refresh)
		case "c":
			if m.state.Err != nil {
				m.actions.ClearError()
			}
		}

	case StateMsg:
		m.state = dapp.State(msg)
		return m, m.waitForState()

	case actionDoneMsg:
		if msg.action == "connect" {
			m.started = true
		} else {
			m.inflight = false
		}
		var e *dapp.Error
		if msg.err != nil && !errors.As(msg.err, &e) {
			// Failures with a kind are already in the state; these are not.
			m.flash = msg.err.Error()
			if errors.Is(msg.err, dapp.ErrBusy) {
				m.flash = "an operation is already running"
			}
		}

	case pageTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, pageTick()
	}
	return m, nil
}

func (m PageModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(Banner() + "\n\n")

	sb.WriteString(fmt.Sprintf("  %s %s %s\n", Meta("Network:"), ChainName(m.cfg.Network), Meta(fmt.Sprintf("(chain %d)", m.cfg.ChainID))))
	if s := m.state.Session; s != nil {
		sb.WriteString(fmt.Sprintf("  %s %s\n\n", Meta("Account:"), Addr(s.Address.Hex())))
	} else if m.state.Err == nil && !m.started {
		sb.WriteString("  " + Meta("Connecting wallet…") + "\n\n")
	} else {
		sb.WriteString("\n")
	}

	if b := m.state.Balances; b != nil {
		sb.WriteString(KeyValueBlock("Balances", [][2]string{
			{"Token", Amount(b.Token, m.cfg.TokenUnit)},
			{"Deposited", Amount(b.Deposited, m.cfg.TokenUnit)},
			{"NFTs", Val(fmt.Sprintf("%d", b.Secondary))},
		}) + "\n")
	}

	if line := m.statusLine(); line != "" {
		sb.WriteString("  " + line + "\n")
	}
	if p := m.state.Pending; p != nil {
		hash := p.Hash.Hex()
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", Meta("Pending "+string(p.Step)+":"), Addr(hash), Meta(m.cfg.TxURL(hash))))
	}
	if e := m.state.Err; e != nil {
		sb.WriteString("  " + Err(e.Message()) + "\n")
	}
	if m.flash != "" {
		sb.WriteString("  " + Warn(m.flash) + "\n")
	}

	sb.WriteString("\n" + m.help() + "\n")
	return sb.String()
}

func (m PageModel) statusLine() string {
	s := m.state
	if !s.Busy() {
		if m.inflight {
			return StyleChain.Render(spinnerFrames[m.frame]) + " " + Meta("working…")
		}
		return ""
	}
	label := s.Phase.String()
	if s.Step != dapp.StepNone {
		label += " (" + string(s.Step) + ")"
	}
	return StyleChain.Render(spinnerFrames[m.frame]) + " " + StyleWarning.Render(string(s.Op)) + " " + Meta(label)
}

func (m PageModel) help() string {
	key := func(k, label string, enabled bool) string {
		if !enabled {
			return Meta("[" + k + "] " + label)
		}
		return StyleKey.Render("["+k+"]") + " " + label
	}
	act := m.canAct()
	parts := []string{
		key("m", "mint "+m.cfg.MintAmount, act),
		key("d", "deposit "+m.cfg.DepositAmount, act),
		key("r", "refresh", act),
		key("c", "clear error", m.state.Err != nil),
		key("q", "quit", true),
	}
	return "  " + strings.Join(parts, "  ")
}
