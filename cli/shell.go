package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/ka2n/exo/browser"
	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/log"
	sysbrowser "github.com/pkg/browser"
)

const idleText = "Enter a URL and press Enter."

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// stateMsg carries one state from the update channel into the UI loop
type stateMsg browser.State

// streamClosedMsg is sent when the controller closed the update channel
type streamClosedMsg struct{}

// loadMsg asks the UI loop to request a load
type loadMsg struct {
	url string
}

// openedMsg reports the result of opening a page in the system browser
type openedMsg struct {
	url string
	err error
}

type focus int

const (
	focusAddress focus = iota
	focusContent
)

// shellModel is the terminal front end of the controller.
// It only calls RequestLoad/Reload and renders states it receives.
type shellModel struct {
	ctrl     *browser.Controller
	updates  <-chan browser.State
	startURL string
	markdown bool

	address textinput.Model
	pager   pager
	focus   focus

	state  browser.State
	notice string
	width  int
	height int
	ready  bool
}

func newShell(ctrl *browser.Controller, updates <-chan browser.State, startURL string, markdown bool) *shellModel {
	ti := textinput.New()
	ti.Placeholder = "Enter URL..."
	ti.Prompt = "URL "
	ti.PromptStyle = statusStyle
	ti.SetValue(startURL)
	ti.Focus()

	return &shellModel{
		ctrl:     ctrl,
		updates:  updates,
		startURL: startURL,
		markdown: markdown,
		address:  ti,
		pager:    newPager(),
		focus:    focusAddress,
		state:    browser.Idle(),
	}
}

// waitForState reads one state from the update channel
func waitForState(updates <-chan browser.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(s)
	}
}

func requestLoad(u string) tea.Cmd {
	return func() tea.Msg {
		return loadMsg{url: u}
	}
}

// dispatch runs fn off the UI goroutine. Publishing the first state of a
// request blocks while the update buffer is full, and only this loop drains it.
func dispatch(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func openInBrowserCmd(u string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: u, err: sysbrowser.OpenURL(u)}
	}
}

// Init starts draining updates and loads the start page
func (m *shellModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForState(m.updates)}
	if m.startURL != "" {
		cmds = append(cmds, requestLoad(m.startURL))
	}
	return tea.Batch(cmds...)
}

// Update handles input and state messages
func (m *shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.address.Width = msg.Width - len(m.address.Prompt) - 2
		// address, title and help lines plus the pane border
		m.pager.SetSize(msg.Width, msg.Height-3)
		if !m.ready {
			m.ready = true
			m.pager.SetContent(m.contentText())
		}
		return m, nil

	case loadMsg:
		m.notice = ""
		m.address.SetValue(msg.url)
		u := msg.url
		return m, dispatch(func() { m.ctrl.RequestLoad(u) })

	case stateMsg:
		m.state = browser.State(msg)
		log.Debug("UI received state update", "state", m.state.String())
		if m.state.URL != nil {
			m.address.SetValue(m.state.URL.String())
		}
		m.pager.SetContent(m.contentText())
		return m, waitForState(m.updates)

	case streamClosedMsg:
		log.Debug("Update stream closed")
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Failed to open %s: %v", msg.url, msg.err)
		} else {
			m.notice = "Opened " + msg.url + " in browser"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusAddress {
		m.address, cmd = m.address.Update(msg)
	}
	return m, cmd
}

func (m *shellModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "ctrl+r":
		m.notice = ""
		return m, dispatch(m.ctrl.Reload)
	case "ctrl+o":
		if m.state.URL == nil {
			return m, nil
		}
		return m, openInBrowserCmd(m.state.URL.String())
	case "tab":
		if !m.pager.Searching() {
			m.toggleFocus()
			return m, nil
		}
	}

	if m.focus == focusAddress {
		switch msg.Type {
		case tea.KeyEnter:
			m.toggleFocus()
			return m, requestLoad(m.address.Value())
		case tea.KeyEscape:
			m.toggleFocus()
			return m, nil
		}
		var cmd tea.Cmd
		m.address, cmd = m.address.Update(msg)
		return m, cmd
	}

	if handled, cmd := m.pager.HandleKey(msg); handled {
		return m, cmd
	}
	switch msg.String() {
	case "q":
		return m.quit()
	case "i", "o":
		m.toggleFocus()
	}
	return m, nil
}

func (m *shellModel) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Updates().Detach()
	return m, tea.Quit
}

func (m *shellModel) toggleFocus() {
	if m.focus == focusAddress {
		m.focus = focusContent
		m.address.Blur()
		return
	}
	m.focus = focusAddress
	m.address.Focus()
}

// contentText maps the current state to the text shown in the pager
func (m *shellModel) contentText() string {
	s := m.state
	switch s.Status {
	case browser.StatusLoading:
		return fmt.Sprintf("Loading %s...", s.URL)
	case browser.StatusLoaded:
		if m.markdown {
			return m.renderMarkdown(s.Output.Text)
		}
		return s.Output.Text
	case browser.StatusError:
		return s.Output.Text
	default:
		return idleText
	}
}

func (m *shellModel) renderMarkdown(md string) string {
	width := m.width - 6
	if width < 20 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn("Failed to create markdown renderer", "error", err)
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		log.Warn("Failed to render markdown", "error", err)
		return md
	}
	return out
}

func (m *shellModel) statusLine() string {
	if m.notice != "" {
		return statusStyle.Render(m.notice)
	}
	s := m.state
	switch s.Status {
	case browser.StatusLoaded:
		if s.Output.Title != "" {
			return titleStyle.Render(s.Output.Title)
		}
		return statusStyle.Render(fmt.Sprintf("Loaded %s", s.URL))
	case browser.StatusError:
		return errorStyle.Render(errorLabel(s.Err.Kind))
	default:
		return statusStyle.Render(s.Status.String())
	}
}

func errorLabel(kind exoerr.Kind) string {
	switch kind {
	case exoerr.URLParse:
		return "Invalid address"
	case exoerr.Network:
		return "Network error"
	default:
		return "Error"
	}
}

// View renders address bar, status line, content and help
func (m *shellModel) View() string {
	if !m.ready {
		return "\nInitializing..."
	}
	help := statusStyle.Render("enter load • tab focus • ctrl+r reload • ctrl+o open in browser • ctrl+c quit")
	if m.focus == focusContent {
		help = statusStyle.Render(m.pager.HelpView() + " • i edit URL • q quit")
	}
	return m.address.View() + "\n" +
		m.statusLine() + "\n" +
		m.pager.View() + "\n" +
		help
}
