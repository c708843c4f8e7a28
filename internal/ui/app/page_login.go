// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/loader"
)

// Login form focus positions.
const (
	loginUser = iota
	loginPassword
	loginRemember
	loginSubmit
	loginFields
)

type loginResultMsg struct {
	seq     int
	home    string
	outcome loader.Outcome
}

// loginPage is the sign-in form.
type loginPage struct {
	env      *env
	seq      int
	user     textinput.Model
	password textinput.Model
	remember bool
	focus    int
	busy     bool
	err      string
}

func newLoginPage(e *env, seq int) *loginPage {
	user := newInput("Username", 64)
	user.Focus()

	password := newInput("Password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return &loginPage{
		env:      e,
		seq:      seq,
		user:     user,
		password: password,
		remember: e.remember,
	}
}

func (p *loginPage) Init() tea.Cmd { return nil }

func (p *loginPage) Title() string { return "Sign in" }

func (p *loginPage) Capturing() bool {
	return p.focus == loginUser || p.focus == loginPassword
}

func (p *loginPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.NextField, k.Toggle, k.Submit}
}

func (p *loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if !msg.outcome.OK() {
			p.err = msg.outcome.Message
			p.password.SetValue("")
			p.setFocus(loginPassword)
			if p.user.Value() == "" {
				p.setFocus(loginUser)
			}
			return p, nil
		}
		return p, navigate(msg.home)

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		k := p.env.keys
		switch {
		case key.Matches(msg, k.NextField):
			p.setFocus((p.focus + 1) % loginFields)
			return p, nil
		case key.Matches(msg, k.PrevField):
			p.setFocus((p.focus + loginFields - 1) % loginFields)
			return p, nil
		case key.Matches(msg, k.Submit):
			if p.focus == loginUser {
				p.setFocus(loginPassword)
				return p, nil
			}
			return p, p.submit()
		case p.focus == loginRemember && key.Matches(msg, k.Toggle):
			p.remember = !p.remember
			return p, nil
		}
	}

	var cmd tea.Cmd
	switch p.focus {
	case loginUser:
		p.user, cmd = p.user.Update(msg)
	case loginPassword:
		p.password, cmd = p.password.Update(msg)
	}
	return p, cmd
}

func (p *loginPage) setFocus(f int) {
	p.focus = f
	p.user.Blur()
	p.password.Blur()
	switch f {
	case loginUser:
		p.user.Focus()
	case loginPassword:
		p.password.Focus()
	}
}

func (p *loginPage) submit() tea.Cmd {
	p.busy = true
	p.err = ""
	l, ctx, seq := p.env.loader, p.env.ctx, p.seq
	user, password, remember := p.user.Value(), p.password.Value(), p.remember
	return func() tea.Msg {
		home, out := l.Login(ctx, user, password, remember)
		return loginResultMsg{seq: seq, home: home, outcome: out}
	}
}

func (p *loginPage) View() string {
	t := p.env.theme

	box := "[ ]"
	boxStyle := t.CheckboxOff
	if p.remember {
		box = "[x]"
		boxStyle = t.CheckboxOn
	}

	button := t.Button.Render("Sign in")
	if p.focus == loginSubmit {
		button = t.ButtonActive.Render("Sign in")
	}

	rows := []string{
		t.Title.Render("Sign in to onboard"),
		field(t, "Username", p.focus == loginUser, p.user.View()),
		field(t, "Password", p.focus == loginPassword, p.password.View()),
		field(t, "Remember me", p.focus == loginRemember, boxStyle.Render(box)),
		"",
		button,
	}
	switch {
	case p.busy:
		rows = append(rows, "", t.Muted.Render("Signing in..."))
	case p.err != "":
		rows = append(rows, "", t.FormError.Render(p.err))
	}

	form := t.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(p.env.width, p.env.height, lipgloss.Center, lipgloss.Center, form)
}
