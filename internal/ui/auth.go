package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
)

// authForm backs both the login and the register screen.
type authForm struct {
	inputs []textinput.Model
	cursor int
	err    string
	busy   bool
}

func newAuthForm() authForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return authForm{inputs: []textinput.Model{username, password}}
}

func (f *authForm) focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.cursor].Focus()
}

func (f *authForm) credentials() services.Credentials {
	return services.Credentials{
		Username: strings.TrimSpace(f.inputs[0].Value()),
		Password: f.inputs[1].Value(),
	}
}

func authMessage(route session.Route) string {
	if route == session.RouteRegister {
		return services.MsgRegisterFailed
	}
	return services.MsgLoginFailed
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) tea.Cmd {
	if m.login.busy {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.register):
		next := session.RouteRegister
		if m.nav.Current() == session.RouteRegister {
			next = session.RouteLogin
		}
		m.login.err = ""
		m.nav.Navigate(next)
		return nil
	case key.Matches(msg, m.keys.back):
		return tea.Quit
	case msg.Type == tea.KeyTab || msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		m.login.cursor = (m.login.cursor + 1) % len(m.login.inputs)
		return m.login.focus()
	case msg.Type == tea.KeyEnter:
		if m.login.cursor == 0 {
			m.login.cursor = 1
			return m.login.focus()
		}
		m.login.busy = true
		m.login.err = ""
		return m.authenticate(m.nav.Current(), m.login.credentials())
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.cursor], cmd = m.login.inputs[m.login.cursor].Update(msg)
	return cmd
}

func (m *Model) authenticate(route session.Route, creds services.Credentials) tea.Cmd {
	return func() tea.Msg {
		var err error
		if route == session.RouteRegister {
			err = m.auth.Register(m.ctx, creds)
		} else {
			err = m.auth.Login(m.ctx, creds)
		}
		return authDoneMsg(route, err)
	}
}

func (m *Model) renderAuth() string {
	heading, other := "Log in", "register"
	if m.nav.Current() == session.RouteRegister {
		heading, other = "Create an account", "log in"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")
	for _, in := range m.login.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.login.busy {
		b.WriteString(styles.help.Render("Working..."))
		b.WriteString("\n")
	}
	if m.login.err != "" {
		b.WriteString(styles.err.Render(m.login.err))
		b.WriteString("\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", other)),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
	})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
