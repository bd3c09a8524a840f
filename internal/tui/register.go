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

// registerModel is the Bubble Tea model for the account-creation screen. It
// renders three text inputs (email, password, and password confirmation) and
// dispatches an async registration command on form submission. A freshly
// created account ends signed in, so success produces a [SignInResult] just
// like the sign-in screen.
type registerModel struct {
	ctx     context.Context
	session service.ClientSessionService

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// newRegisterModel creates a [registerModel] with three pre-configured text
// inputs. The email field receives focus immediately; the password fields use
// masked echo.
func newRegisterModel(ctx context.Context, session service.ClientSessionService) *registerModel {
	fields := make([]textinput.Model, 3)

	fields[0] = textinput.New()
	fields[0].Placeholder = "email"
	fields[0].CharLimit = 254
	fields[0].Width = 40
	fields[0].Focus()

	fields[1] = textinput.New()
	fields[1].Placeholder = "password"
	fields[1].EchoMode = textinput.EchoPassword
	fields[1].EchoCharacter = '*'
	fields[1].Width = 40

	fields[2] = textinput.New()
	fields[2].Placeholder = "repeat password"
	fields[2].EchoMode = textinput.EchoPassword
	fields[2].EchoCharacter = '*'
	fields[2].Width = 40

	return &registerModel{
		ctx:     ctx,
		session: session,
		inputs:  fields,
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation for the
// active input.
func (m *registerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [SignInResult] — clears submitting state; on error, populates errMsg.
//   - esc            — cancels and navigates back to the menu.
//   - tab            — moves focus to the next input.
//   - shift+tab      — moves focus to the previous input.
//   - enter          — validates inputs (all required; passwords must match)
//     and dispatches the async registration command.
//
// All other key events are forwarded to the focused input widget.
func (m *registerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			repeat := m.inputs[2].Value()
			switch {
			case email == "" || pass == "":
				m.errMsg = "email and password are required"
				return m, nil
			case pass != repeat:
				m.errMsg = "passwords do not match"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdRegister(email, pass)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model].
func (m *registerModel) View() string {
	var b strings.Builder
	b.WriteString("Field     │ Value\n")
	b.WriteString("──────────┼────────────────────────────────────────────\n")
	b.WriteString("Email     │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Password  │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")
	b.WriteString("Repeat    │ [")
	b.WriteString(m.inputs[2].View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Creating account...]\n")
	} else {
		b.WriteString("\n[Create account]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("CREATE ACCOUNT", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *registerModel) cmdRegister(email, pass string) tea.Cmd {
	ctx := m.ctx
	session := m.session

	return func() tea.Msg {
		err := session.Register(ctx, email, pass)
		if err != nil && errors.Is(err, service.ErrLoadFailure) {
			return SignInResult{Identity: email, LoadWarning: err}
		}
		return SignInResult{Identity: email, Err: err}
	}
}

func (m *registerModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *registerModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}
