package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	searchHighlight = lipgloss.NewStyle().
			Background(lipgloss.Color("228")). // yellow
			Foreground(lipgloss.Color("0"))    // black

	currentMatchHighlight = lipgloss.NewStyle().
				Background(lipgloss.Color("196")). // red
				Foreground(lipgloss.Color("15"))   // white

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			PaddingLeft(2).
			PaddingRight(2)
)

type searchState struct {
	active       bool
	input        textinput.Model
	matches      []int // byte offsets into content
	currentMatch int
}

// pager is the scrollable, searchable content area of the shell
type pager struct {
	viewport viewport.Model
	content  string
	search   searchState
}

func newPager() pager {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	vp := viewport.New(0, 0)
	vp.Style = paneStyle
	return pager{
		viewport: vp,
		search:   searchState{input: ti},
	}
}

// SetSize resizes the viewport
func (p *pager) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// SetContent replaces the content, clears any search and scrolls to the top
func (p *pager) SetContent(content string) {
	p.content = content
	p.search.active = false
	p.search.input.Reset()
	p.search.matches = nil
	p.search.currentMatch = 0
	p.viewport.SetContent(content)
	p.viewport.GotoTop()
}

// Searching reports whether the search prompt has focus
func (p *pager) Searching() bool {
	return p.search.active
}

// HandleKey processes a key while the pager has focus.
// It returns false for keys the pager does not use.
func (p *pager) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if p.search.active {
		var cmd tea.Cmd
		switch msg.Type {
		case tea.KeyEscape:
			p.search.active = false
			p.search.input.Reset()
			p.clearHighlights()
		case tea.KeyEnter:
			if p.search.input.Value() != "" {
				p.performSearch()
				p.search.active = false
			}
		default:
			p.search.input, cmd = p.search.input.Update(msg)
		}
		return true, cmd
	}

	switch msg.String() {
	case "esc":
		if len(p.search.matches) == 0 {
			return false, nil
		}
		p.clearHighlights()
		p.search.input.Reset()
	case "j", "down":
		p.viewport.ScrollDown(1)
	case "k", "up":
		p.viewport.ScrollUp(1)
	case "f", "pgdown", " ":
		p.viewport.ScrollDown(p.viewport.Height)
	case "b", "pgup":
		p.viewport.ScrollUp(p.viewport.Height)
	case "g", "home":
		p.viewport.GotoTop()
	case "G", "end":
		p.viewport.GotoBottom()
	case "/":
		p.search.active = true
		return true, p.search.input.Focus()
	case "n":
		p.nextMatch()
	case "N":
		p.previousMatch()
	default:
		return false, nil
	}
	return true, nil
}

// View renders the viewport
func (p *pager) View() string {
	return p.viewport.View()
}

// HelpView renders the search prompt, or the key help when not searching
func (p *pager) HelpView() string {
	if p.search.active {
		return p.search.input.View()
	}
	searchHelp := "/ search • n next • N previous"
	if len(p.search.matches) > 0 {
		searchHelp = fmt.Sprintf("/ search (%d/%d) • n next • N previous",
			p.search.currentMatch+1, len(p.search.matches))
	}
	return "j/k scroll • f/b page • g/G top/bottom • " + searchHelp
}

func (p *pager) performSearch() {
	p.search.matches = nil
	p.search.currentMatch = 0

	// Smart case: only case sensitive when the query has upper case letters
	query := p.search.input.Value()
	content := p.content
	if !strings.ContainsAny(query, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		content = lowerASCII(content)
	}

	for pos := 0; pos < len(content); {
		i := strings.Index(content[pos:], query)
		if i == -1 {
			break
		}
		p.search.matches = append(p.search.matches, pos+i)
		pos += i + len(query)
	}

	if len(p.search.matches) == 0 {
		return
	}

	// Prefer the first match already on screen
	for i, pos := range p.search.matches {
		line := p.lineOf(pos)
		if line >= p.viewport.YOffset && line < p.viewport.YOffset+p.viewport.Height {
			p.search.currentMatch = i
			break
		}
	}
	p.highlightMatches()
	p.scrollToMatch(p.search.currentMatch)
}

func (p *pager) highlightMatches() {
	queryLen := len(p.search.input.Value())
	var b strings.Builder

	last := 0
	for i, pos := range p.search.matches {
		b.WriteString(p.content[last:pos])
		match := p.content[pos : pos+queryLen]
		if i == p.search.currentMatch {
			b.WriteString(currentMatchHighlight.Render(match))
		} else {
			b.WriteString(searchHighlight.Render(match))
		}
		last = pos + queryLen
	}
	b.WriteString(p.content[last:])

	p.viewport.SetContent(b.String())
}

func (p *pager) nextMatch() {
	if len(p.search.matches) == 0 {
		return
	}
	p.search.currentMatch = (p.search.currentMatch + 1) % len(p.search.matches)
	p.highlightMatches()
	p.scrollToMatch(p.search.currentMatch)
}

func (p *pager) previousMatch() {
	if len(p.search.matches) == 0 {
		return
	}
	p.search.currentMatch--
	if p.search.currentMatch < 0 {
		p.search.currentMatch = len(p.search.matches) - 1
	}
	p.highlightMatches()
	p.scrollToMatch(p.search.currentMatch)
}

// lowerASCII lower-cases A-Z only, keeping byte offsets stable
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (p *pager) lineOf(pos int) int {
	return strings.Count(p.content[:pos], "\n")
}

func (p *pager) scrollToMatch(index int) {
	if index < 0 || index >= len(p.search.matches) {
		return
	}

	target := p.lineOf(p.search.matches[index])
	if target < p.viewport.YOffset {
		p.viewport.SetYOffset(target)
	} else if target >= p.viewport.YOffset+p.viewport.Height {
		p.viewport.SetYOffset(target - p.viewport.Height + 1)
	}
}

// clearHighlights removes all search highlights and resets search state
func (p *pager) clearHighlights() {
	p.search.matches = nil
	p.search.currentMatch = 0
	p.viewport.SetContent(p.content)
}
