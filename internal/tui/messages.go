package tui

import (
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	tea "github.com/charmbracelet/bubbletea"
)

// NavigateTo switches the root router to another page. An optional payload
// is delivered to the target page right after the switch.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

// SignInResult finishes the sign-in flow. Err carries a rejected
// authentication; LoadWarning is set when the account signed in but the
// initial remote load failed, leaving automatic sync blocked.
type SignInResult struct {
	Identity    string
	Err         error
	LoadWarning error
}

type refreshTickMsg time.Time

type refreshMsg struct {
	snap dashboardSnapshot
}

type profileLoadedMsg struct {
	profile models.Profile
	err     error
}

type syncDoneMsg struct {
	err error
}

type mergeDoneMsg struct {
	report models.VerificationReport
	err    error
}

type restoreDoneMsg struct {
	err error
}

type exportDoneMsg struct {
	path   string
	copied bool
	err    error
}

type importReadMsg struct {
	path string
	blob []byte
	err  error
}

type importDoneMsg struct {
	err error
}
