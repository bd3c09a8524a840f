// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginModel is the Bubble Tea model for the sign-in screen. It renders two
// text inputs (email and password) and dispatches an async login command on
// form submission. On success a [SignInResult] message is produced and
// handled by [RootModel] to finish the flow.
type loginModel struct {
	ctx     context.Context
	session service.ClientSessionService

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// newLoginModel creates a [loginModel] with pre-configured email and password
// inputs. The email field receives focus immediately; the password field uses
// masked echo.
func newLoginModel(ctx context.Context, session service.ClientSessionService) *loginModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.CharLimit = 254
	emailInput.Width = 40
	emailInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 256
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '*'

	return &loginModel{
		ctx:     ctx,
		session: session,
		inputs:  []textinput.Model{emailInput, passwordInput},
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation for the
// active input.
func (m *loginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [SignInResult] — clears submitting state; on error, populates errMsg.
//   - esc            — cancels and navigates back to the menu.
//   - tab            — moves focus to the next input.
//   - shift+tab      — moves focus to the previous input.
//   - enter          — validates inputs and dispatches the async sign-in command.
//
// All other key events are forwarded to the focused input widget.
func (m *loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(SignInResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = actionErrorMessage(result.Err)
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.submitting = false
			m.errMsg = ""
			return m, func() tea.Msg { return NavigateTo{Page: "menu"} }
		case "tab":
			m.focusNext()
			return m, nil
		case "shift+tab":
			m.focusPrev()
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}

			email := strings.TrimSpace(m.inputs[0].Value())
			pass := m.inputs[1].Value()
			if email == "" || pass == "" {
				m.errMsg = "email and password are required"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdSignIn(email, pass)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model]. Renders the sign-in form as a two-column table
// with email and password inputs, a submission indicator, and an optional
// error message.
func (m *loginModel) View() string {
	var b strings.Builder
	b.WriteString("Field    │ Value\n")
	b.WriteString("─────────┼────────────────────────────────────────────\n")
	b.WriteString("Email    │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Password │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Signing in...]\n")
	} else {
		b.WriteString("\n[Sign in]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("SIGN IN", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *loginModel) cmdSignIn(email, pass string) tea.Cmd {
	ctx := m.ctx
	session := m.session

	return func() tea.Msg {
		err := session.Login(ctx, email, pass)
		if err != nil && errors.Is(err, service.ErrLoadFailure) {
			// Authenticated, but the initial load failed: the console still
			// opens, with automatic sync blocked.
			return SignInResult{Identity: email, LoadWarning: err}
		}
		return SignInResult{Identity: email, Err: err}
	}
}

func (m *loginModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *loginModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}
