// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// refreshEvery is the poll interval of the console; the engine works on
// its own goroutines, so the view just samples it.
const refreshEvery = time.Second

// dashboardSnapshot is one sampled view of the engine, assembled off the
// UI loop by cmdRefresh.
type dashboardSnapshot struct {
	status    models.SyncStatus
	state     service.SchedulerState
	counts    map[models.Collection]int
	dirty     int
	deletes   int
	pending   bool
	lastLocal time.Time
	gateUntil time.Time // zero while the quota gate is open
	lastErr   error
}

// dashboardModel is the sync console: engine status, per-collection
// record counts, and the manual actions (force sync, merge sync, restore,
// export, import).
type dashboardModel struct {
	ctx      context.Context
	services *service.ClientServices
	identity string

	snap     dashboardSnapshot
	lastSync *time.Time
	report   *models.VerificationReport

	busy    string // non-empty while an action command is running
	notice  string
	warning string

	confirm    confirmKind
	importPath textinput.Model
	typingPath bool
	pendingImp importReadMsg
}

func newDashboardModel(ctx context.Context, services *service.ClientServices, identity string, loadWarning error) *dashboardModel {
	pathInput := textinput.New()
	pathInput.Placeholder = "path to exported file"
	pathInput.CharLimit = 512
	pathInput.Width = 48

	m := &dashboardModel{
		ctx:        ctx,
		services:   services,
		identity:   identity,
		importPath: pathInput,
	}
	if loadWarning != nil {
		m.warning = actionErrorMessage(loadWarning)
	}
	return m
}

// Init implements [tea.Model].
func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.cmdRefresh(), m.cmdLoadProfile(), tickCmd())
}

// Update implements [tea.Model].
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshTickMsg:
		return m, tea.Batch(m.cmdRefresh(), tickCmd())

	case refreshMsg:
		m.snap = msg.snap
		return m, nil

	case profileLoadedMsg:
		if msg.err == nil {
			m.lastSync = msg.profile.LastSyncAt
		}
		return m, nil

	case syncDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = actionErrorMessage(msg.err)
			return m, m.cmdRefresh()
		}
		m.notice = "sync committed"
		return m, tea.Batch(m.cmdRefresh(), m.cmdLoadProfile())

	case mergeDoneMsg:
		m.busy = ""
		if msg.report.Decision != 0 {
			report := msg.report
			m.report = &report
		}
		if msg.err != nil {
			m.notice = actionErrorMessage(msg.err)
			return m, m.cmdRefresh()
		}
		m.notice = "merge sync finished: " + msg.report.Decision.String()
		return m, tea.Batch(m.cmdRefresh(), m.cmdLoadProfile())

	case restoreDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = actionErrorMessage(msg.err)
		} else {
			m.notice = "backup restored; restart to load the restored state"
		}
		return m, m.cmdRefresh()

	case exportDoneMsg:
		m.busy = ""
		switch {
		case msg.err != nil:
			m.notice = actionErrorMessage(msg.err)
		case msg.copied:
			m.notice = "exported to " + msg.path + " (path copied to clipboard)"
		default:
			m.notice = "exported to " + msg.path
		}
		return m, nil

	case importReadMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = "cannot read file: " + msg.err.Error()
			return m, nil
		}
		m.pendingImp = msg
		m.confirm = confirmImport
		return m, nil

	case importDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = actionErrorMessage(msg.err)
		} else {
			m.notice = "import applied; restart to load the imported state"
		}
		return m, m.cmdRefresh()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m *dashboardModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirm != confirmNone {
		switch key {
		case "y":
			kind := m.confirm
			m.confirm = confirmNone
			if kind == confirmRestore {
				m.busy = "restoring backup"
				return m, m.cmdRestore()
			}
			m.busy = "importing"
			return m, m.cmdImport(m.pendingImp.blob)
		case "n", "esc":
			m.confirm = confirmNone
			m.pendingImp = importReadMsg{}
			return m, nil
		}
		return m, nil
	}

	if m.typingPath {
		switch key {
		case "esc":
			m.typingPath = false
			m.importPath.Blur()
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.importPath.Value())
			if path == "" {
				return m, nil
			}
			m.typingPath = false
			m.importPath.Blur()
			m.busy = "reading file"
			return m, cmdReadImportFile(path)
		}
		var cmd tea.Cmd
		m.importPath, cmd = m.importPath.Update(msg)
		return m, cmd
	}

	if m.busy != "" {
		// One action at a time keeps the status line readable; the
		// engine itself already serializes commits.
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "f":
		m.busy = "force syncing"
		m.notice = ""
		return m, m.cmdForceSync()
	case "m":
		m.busy = "merge syncing"
		m.notice = ""
		return m, m.cmdMergeSync()
	case "r":
		m.confirm = confirmRestore
		return m, nil
	case "e":
		m.busy = "exporting"
		m.notice = ""
		return m, m.cmdExport()
	case "i":
		m.typingPath = true
		m.importPath.SetValue("")
		m.importPath.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// View implements [tea.Model].
func (m *dashboardModel) View() string {
	if m.confirm == confirmRestore {
		return (confirmModel{
			kind:    confirmRestore,
			message: "Overwrite local state with the pre-pull backup?",
			warning: "A restart is required afterwards.",
		}).View()
	}
	if m.confirm == confirmImport {
		return (confirmModel{
			kind:    confirmImport,
			message: fmt.Sprintf("Import %s (%d bytes) over local state?", m.pendingImp.path, len(m.pendingImp.blob)),
			warning: "A restart is required afterwards.",
		}).View()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Identity      │ %s\n", orDash(m.identity))
	fmt.Fprintf(&b, "Sync status   │ %s (%s)\n", m.snap.status, m.snap.state)
	fmt.Fprintf(&b, "Last sync     │ %s\n", formatLastSync(m.lastSync))
	fmt.Fprintf(&b, "Last edit     │ %s\n", formatWhen(m.snap.lastLocal))
	fmt.Fprintf(&b, "Pending write │ %s\n", yesNo(m.snap.pending))
	fmt.Fprintf(&b, "Dirty records │ %d (+%d deletes)\n", m.snap.dirty, m.snap.deletes)
	fmt.Fprintf(&b, "Quota gate    │ %s\n", gateLine(m.snap.gateUntil))

	if m.snap.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Last commit error: " + actionErrorMessage(m.snap.lastErr)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderCounts(m.snap.counts, m.report))

	if m.typingPath {
		b.WriteString("\nImport file │ [")
		b.WriteString(m.importPath.View())
		b.WriteString("]  enter: read │ esc: cancel\n")
	}

	if m.busy != "" {
		fmt.Fprintf(&b, "\n[%s...]\n", m.busy)
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(fitText(m.notice, 78))
		b.WriteString("\n")
	}
	if m.warning != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Warning: " + m.warning))
		b.WriteString("\n")
	}

	return renderPage(
		"SYNC CONSOLE",
		strings.TrimRight(b.String(), "\n"),
		"f: force sync │ m: merge sync │ r: restore backup │ e: export │ i: import │ q: quit",
	)
}

// renderCounts draws the per-collection table; remote counts appear once
// a verification report exists.
func renderCounts(local map[models.Collection]int, report *models.VerificationReport) string {
	var b strings.Builder

	if report == nil {
		b.WriteString("Collection  │ Local\n")
		b.WriteString("────────────┼──────\n")
		for _, c := range models.Collections() {
			fmt.Fprintf(&b, "%-11s │ %5d\n", c, local[c])
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Collection  │ Local │ Remote   (verified %s, %s)\n",
		formatWhen(report.RanAt), report.Decision)
	b.WriteString("────────────┼───────┼───────\n")
	for _, c := range models.Collections() {
		marker := ""
		if report.Remote[c] != report.Local[c] {
			marker = "  ←"
		}
		fmt.Fprintf(&b, "%-11s │ %5d │ %5d%s\n", c, local[c], report.Remote[c], marker)
	}
	return b.String()
}

func formatLastSync(at *time.Time) string {
	if at == nil {
		return "never"
	}
	return formatWhen(*at)
}

func gateLine(until time.Time) string {
	if until.IsZero() || !until.After(time.Now()) {
		return "open"
	}
	return "cooling down until " + formatWhen(until)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m *dashboardModel) cmdRefresh() tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		snap := dashboardSnapshot{
			status:  services.Scheduler.Status(),
			state:   services.Scheduler.State(),
			counts:  services.Tree.Counts(),
			lastErr: services.Scheduler.LastError(),
		}
		snap.dirty, snap.deletes = services.Tracker.Counts()
		snap.pending, _ = services.Tree.PendingRemoteWrite(ctx)
		snap.lastLocal, _ = services.Tree.LastLocalModified(ctx)
		if services.Gate.IsExhausted() {
			snap.gateUntil = services.Gate.Deadline()
		}
		return refreshMsg{snap: snap}
	}
}

func (m *dashboardModel) cmdLoadProfile() tea.Cmd {
	ctx, session := m.ctx, m.services.Session
	return func() tea.Msg {
		profile, err := session.Profile(ctx)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m *dashboardModel) cmdForceSync() tea.Cmd {
	ctx, scheduler := m.ctx, m.services.Scheduler
	return func() tea.Msg {
		return syncDoneMsg{err: scheduler.ForceSync(ctx)}
	}
}

func (m *dashboardModel) cmdMergeSync() tea.Cmd {
	ctx, verify := m.ctx, m.services.Verify
	return func() tea.Msg {
		report, err := verify.MergeSync(ctx)
		return mergeDoneMsg{report: report, err: err}
	}
}

func (m *dashboardModel) cmdRestore() tea.Cmd {
	ctx, backup := m.ctx, m.services.Backup
	return func() tea.Msg {
		return restoreDoneMsg{err: backup.Restore(ctx)}
	}
}

func (m *dashboardModel) cmdExport() tea.Cmd {
	ctx, backup := m.ctx, m.services.Backup
	return func() tea.Msg {
		path, err := backup.Export(ctx)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		copied := clipboard.WriteAll(path) == nil
		return exportDoneMsg{path: path, copied: copied}
	}
}

func cmdReadImportFile(path string) tea.Cmd {
	return func() tea.Msg {
		blob, err := os.ReadFile(path)
		return importReadMsg{path: path, blob: blob, err: err}
	}
}

func (m *dashboardModel) cmdImport(blob []byte) tea.Cmd {
	ctx, backup := m.ctx, m.services.Backup
	return func() tea.Msg {
		return importDoneMsg{err: backup.ImportBlob(ctx, blob)}
	}
}
