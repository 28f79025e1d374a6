package ui_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/dmint/internal/dapp"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

type fakeActions struct {
	mu      sync.Mutex
	calls   []string
	amount  string
	mintErr error
	cleared int
	updates chan dapp.State
}

func newFakeActions() *fakeActions {
	return &fakeActions{updates: make(chan dapp.State, 1)}
}

func (f *fakeActions) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeActions) Start(context.Context) error   { f.record("start"); return nil }
func (f *fakeActions) Refresh(context.Context) error { f.record("refresh"); return nil }
func (f *fakeActions) Mint(context.Context) error    { f.record("mint"); return f.mintErr }
func (f *fakeActions) Deposit(_ context.Context, amount string) error {
	f.record("deposit")
	f.amount = amount
	return nil
}
func (f *fakeActions) ClearError()                { f.cleared++ }
func (f *fakeActions) Updates() <-chan dapp.State { return f.updates }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var account = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func connected() dapp.State {
	return dapp.State{
		Session:  dapp.NewSession(account, big.NewInt(31337), "localhost", nil),
		Balances: &dapp.BalanceSnapshot{Token: "100000.0", Deposited: "0.0", Secondary: 0},
	}
}

func newPage(f *fakeActions) ui.PageModel {
	return ui.NewPage(context.Background(), f, ui.PageConfig{
		Network:       "localhost",
		ChainID:       31337,
		TokenUnit:     "TKN",
		MintAmount:    "100000",
		DepositAmount: "1000",
		TxURL:         func(h string) string { return "https://explorer/tx/" + h },
	})
}

func update(t *testing.T, m ui.PageModel, msg tea.Msg) (ui.PageModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ui.PageModel)
	require.True(t, ok)
	return pm, cmd
}

func TestPageMintKeyRunsMint(t *testing.T) {
	f := newFakeActions()
	m, _ := update(t, newPage(f), ui.StateMsg(connected()))

	m, cmd := update(t, m, key("m"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"mint"}, f.calls)

	// A second press before the first returns does nothing.
	_, cmd = update(t, m, key("m"))
	assert.Nil(t, cmd)
}

func TestPageDepositUsesConfiguredAmount(t *testing.T) {
	f := newFakeActions()
	m, _ := update(t, newPage(f), ui.StateMsg(connected()))

	_, cmd := update(t, m, key("d"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"deposit"}, f.calls)
	assert.Equal(t, "1000", f.amount)
}

func TestPageActionsDisabledWithoutSession(t *testing.T) {
	f := newFakeActions()
	m := newPage(f)

	for _, k := range []string{"m", "d", "r"} {
		var cmd tea.Cmd
		m, cmd = update(t, m, key(k))
		assert.Nil(t, cmd, k)
	}
	assert.Empty(t, f.calls)
}

func TestPageActionsDisabledWhileBusy(t *testing.T) {
	f := newFakeActions()
	busy := connected()
	busy.Op = dapp.OpDeposit
	busy.Step = dapp.StepApprove
	busy.Phase = dapp.PhaseAwaitingConfirmation
	busy.Pending = &dapp.PendingTx{Hash: common.HexToHash("0xabc"), Op: dapp.OpDeposit, Step: dapp.StepApprove}
	m, _ := update(t, newPage(f), ui.StateMsg(busy))

	_, cmd := update(t, m, key("m"))
	assert.Nil(t, cmd)
	assert.Empty(t, f.calls)

	view := m.View()
	assert.Contains(t, view, "awaiting confirmation (approve)")
	assert.Contains(t, view, busy.Pending.Hash.Hex())
	assert.Contains(t, view, "https://explorer/tx/"+busy.Pending.Hash.Hex())
}

func TestPageActionDoneReenables(t *testing.T) {
	f := newFakeActions()
	m, _ := update(t, newPage(f), ui.StateMsg(connected()))
	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	_, cmd = update(t, m, key("m"))
	assert.NotNil(t, cmd, "actions are enabled again once the refresh returned")
}

func TestPageShowsErrorAndClears(t *testing.T) {
	f := newFakeActions()
	s := connected()
	s.Err = &dapp.Error{Kind: dapp.KindSubmission, Op: "mint", Err: errors.New("user rejected transaction")}
	m, _ := update(t, newPage(f), ui.StateMsg(s))

	assert.Contains(t, m.View(), "user rejected transaction")

	update(t, m, key("c"))
	assert.Equal(t, 1, f.cleared)
}

func TestPageClearWithoutErrorIsNoop(t *testing.T) {
	f := newFakeActions()
	m, _ := update(t, newPage(f), ui.StateMsg(connected()))
	update(t, m, key("c"))
	assert.Zero(t, f.cleared)
}

func TestPageFlashesBusy(t *testing.T) {
	f := newFakeActions()
	f.mintErr = dapp.ErrBusy
	m, _ := update(t, newPage(f), ui.StateMsg(connected()))
	m, cmd := update(t, m, key("m"))
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "an operation is already running")
}

func TestPageRendersBalances(t *testing.T) {
	f := newFakeActions()
	s := connected()
	s.Balances = &dapp.BalanceSnapshot{Token: "99000.0", Deposited: "1000.0", Secondary: 1}
	m, _ := update(t, newPage(f), ui.StateMsg(s))

	view := m.View()
	assert.Contains(t, view, "99000.0")
	assert.Contains(t, view, "1000.0")
	assert.Contains(t, view, account.Hex())
	assert.Contains(t, view, "localhost")
}

func TestPageNoWalletMessage(t *testing.T) {
	f := newFakeActions()
	s := dapp.State{Err: &dapp.Error{Kind: dapp.KindEnvironment, Op: "connect", Err: dapp.ErrNoWalletDetected}, Phase: dapp.PhaseFailed}
	m, _ := update(t, newPage(f), ui.StateMsg(s))

	assert.Contains(t, m.View(), dapp.ErrNoWalletDetected.Error())
}

func TestPageStateMsgWaitsForNext(t *testing.T) {
	f := newFakeActions()
	m, cmd := update(t, newPage(f), ui.StateMsg(connected()))
	require.NotNil(t, cmd)

	next := connected()
	next.Balances = &dapp.BalanceSnapshot{Token: "5.0", Deposited: "0.0"}
	f.updates <- next
	msg := cmd()
	m, _ = update(t, m, msg)
	assert.Equal(t, "5.0", m.State().Balances.Token)
}

func TestPageQuit(t *testing.T) {
	m := newPage(newFakeActions())
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
