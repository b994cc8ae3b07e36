// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login implements the sign-in and registration view.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SignedInMsg is emitted after a successful login (or registration
// followed by login).
type SignedInMsg struct{ User *model.User }

type loginResultMsg struct {
	user *model.User
	err  error
}

type registerResultMsg struct{ err error }

// =============================================================================
// MODEL
// =============================================================================

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// Field indexes for the login form.
const (
	fieldEmail = iota
	fieldPassword
	// Registration-only fields
	fieldFirstName
	fieldLastName
	fieldConfirm
	fieldCount
)

// Model is the login view state.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	mode    mode
	inputs  []textinput.Model
	focus   int
	busy    bool
	errs    []string
	banner  string
	width   int
	height  int
}

// New creates the login view.
func New(client *api.Client, theme *styles.Theme) *Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 120
		in.Width = 40
		inputs[i] = in
	}
	inputs[fieldEmail].Placeholder = "you" + model.UniversityDomain
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldFirstName].Placeholder = "first name"
	inputs[fieldLastName].Placeholder = "last name"
	inputs[fieldConfirm].Placeholder = "confirm password"
	inputs[fieldConfirm].EchoMode = textinput.EchoPassword

	m := &Model{client: client, theme: theme, inputs: inputs}
	m.inputs[fieldEmail].Focus()
	return m
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// SetBanner shows a one-line notice above the form (e.g. after the
// session expired, or when signing in is required to vote).
func (m *Model) SetBanner(text string) { m.banner = text }

// Init is the bubbletea entry point.
func (m *Model) Init() tea.Cmd { return textinput.Blink }

// fields returns the input indexes active in the current mode, in tab
// order.
func (m *Model) fields() []int {
	if m.mode == modeRegister {
		return []int{fieldFirstName, fieldLastName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

// Update handles messages for the login view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return m, nil
		case "ctrl+r":
			m.toggleMode()
			return m, nil
		case "enter":
			return m, m.submit()
		}

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errs = []string{loginErrorText(msg.err)}
			return m, nil
		}
		return m, func() tea.Msg { return SignedInMsg{User: msg.user} }

	case registerResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errs = []string{apiErrorText(msg.err)}
			return m, nil
		}
		// Account created; sign in with the same credentials.
		m.busy = true
		email := m.inputs[fieldEmail].Value()
		password := m.inputs[fieldPassword].Value()
		return m, m.loginCmd(email, password)
	}

	var cmds []tea.Cmd
	for _, i := range m.fields() {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) cycleFocus(dir int) {
	fields := m.fields()
	m.focus = (m.focus + dir + len(fields)) % len(fields)
	for pos, i := range fields {
		if pos == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) toggleMode() {
	if m.mode == modeLogin {
		m.mode = modeRegister
	} else {
		m.mode = modeLogin
	}
	m.errs = nil
	m.focus = 0
	m.cycleFocus(0)
}

func (m *Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	if m.mode == modeRegister {
		reg := model.Registration{
			Email:           email,
			FirstName:       strings.TrimSpace(m.inputs[fieldFirstName].Value()),
			LastName:        strings.TrimSpace(m.inputs[fieldLastName].Value()),
			Password:        password,
			PasswordConfirm: m.inputs[fieldConfirm].Value(),
		}
		if problems := reg.Validate(); len(problems) > 0 {
			m.errs = problems
			return nil
		}
		m.errs = nil
		m.busy = true
		return func() tea.Msg {
			_, err := m.client.Register(context.Background(), reg)
			return registerResultMsg{err: err}
		}
	}

	if email == "" || password == "" {
		m.errs = []string{"email and password are required"}
		return nil
	}
	if !strings.Contains(email, "@") {
		m.errs = []string{"that does not look like an email address"}
		return nil
	}
	m.errs = nil
	m.busy = true
	return m.loginCmd(email, password)
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := m.client.Login(ctx, email, password); err != nil {
			return loginResultMsg{err: err}
		}
		user, err := m.client.Me(ctx)
		return loginResultMsg{user: user, err: err}
	}
}

// loginErrorText maps login failures to the message users expect.
func loginErrorText(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return "wrong password or email"
	}
	return apiErrorText(err)
}

func apiErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the form.
func (m *Model) View() string {
	var b strings.Builder

	title := "Sign in to Talk@FCIT"
	hint := "ctrl+r register"
	if m.mode == modeRegister {
		title = "Create your Talk@FCIT account"
		hint = "ctrl+r back to sign in"
	}
	b.WriteString(m.theme.Brand.Render(title))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(m.theme.WarningText.Render(m.banner))
		b.WriteString("\n\n")
	}

	labels := map[int]string{
		fieldEmail:     "Email",
		fieldPassword:  "Password",
		fieldFirstName: "First name",
		fieldLastName:  "Last name",
		fieldConfirm:   "Confirm",
	}
	for _, i := range m.fields() {
		b.WriteString(m.theme.InputLabel.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	for _, e := range m.errs {
		b.WriteString(m.theme.ErrorText.Render("! " + e))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(m.theme.MutedText.Render("signing in..."))
	} else {
		b.WriteString(m.theme.MutedText.Render("enter submit  " + hint))
	}

	form := m.theme.InputBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
