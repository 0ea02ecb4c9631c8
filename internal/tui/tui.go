// Package tui is a live browser over the learned state the other packages
// maintain: pattern success rates from internal/patterns and the Q-table /
// exploration rate from internal/learning. Repurposed from the teacher's
// digest-pipeline TUI (spec §13 "Pattern/Q-table live browser"), keeping its
// bubbletea model/Update/View shape and lipgloss style vocabulary.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/recoengine/internal/learning"
	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/store"
)

type viewMode int

const (
	viewPatterns viewMode = iota
	viewBandit
)

const loadTimeout = 5 * time.Second

type model struct {
	store  *store.Store
	engine *learning.Engine

	view   viewMode
	cursor int

	patterns []core.Pattern
	qEntries []learning.Entry
	epsilon  float64

	errorMessage string
	quitting     bool
}

// InitialModel builds the starting TUI state against a live store and
// learning engine.
func InitialModel(st *store.Store, engine *learning.Engine) model {
	return model{store: st, engine: engine, view: viewPatterns}
}

func (m model) Init() tea.Cmd {
	return loadPatterns(m.store)
}

type patternsLoadedMsg struct{ patterns []core.Pattern }
type errMsg struct{ err error }

func loadPatterns(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		patterns, err := st.ListPatterns(ctx, "")
		if err != nil {
			return errMsg{err}
		}
		sort.Slice(patterns, func(i, j int) bool {
			return patterns[i].SuccessRate > patterns[j].SuccessRate
		})
		return patternsLoadedMsg{patterns}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case patternsLoadedMsg:
		m.patterns = msg.patterns
		return m, nil
	case errMsg:
		m.errorMessage = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.cursor = 0
			if m.view == viewPatterns {
				m.view = viewBandit
				m.qEntries = m.engine.QSnapshot()
				m.epsilon = m.engine.Epsilon()
			} else {
				m.view = viewPatterns
				return m, loadPatterns(m.store)
			}
		case "down", "j":
			if m.cursor < m.maxCursor() {
				m.cursor++
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m model) maxCursor() int {
	switch m.view {
	case viewPatterns:
		return max(0, len(m.patterns)-1)
	default:
		return max(0, len(m.qEntries)-1)
	}
}

func (m model) View() string {
	if m.quitting {
		return "\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105")).Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).
		BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")).Background(lipgloss.Color("57"))
	normalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("recoengine — pattern & bandit browser"))
	content.WriteString("\n\n")

	if m.errorMessage != "" {
		content.WriteString(errorStyle.Render("error: " + m.errorMessage))
		content.WriteString("\n\n")
	}

	switch m.view {
	case viewPatterns:
		content.WriteString(m.renderPatterns(headerStyle, selectedStyle, normalStyle))
	case viewBandit:
		content.WriteString(m.renderBandit(headerStyle, selectedStyle, normalStyle))
	}

	content.WriteString("\n")
	content.WriteString(normalStyle.Render("[tab] switch view  [j/k] move  [q] quit"))
	return content.String()
}

func (m model) renderPatterns(headerStyle, selectedStyle, normalStyle lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Patterns (%d)", len(m.patterns))))
	b.WriteString("\n")
	if len(m.patterns) == 0 {
		b.WriteString(normalStyle.Render("no patterns seeded or learned yet"))
		return b.String()
	}
	for i, p := range m.patterns {
		line := fmt.Sprintf("%-16s  success=%.2f  uses=%-5d  reward=%+.2f  %s",
			p.TaskType, p.SuccessRate, p.TotalUses, p.AvgReward, p.Approach)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderBandit(headerStyle, selectedStyle, normalStyle lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Bandit state — ε=%.3f", m.epsilon)))
	b.WriteString("\n")
	if len(m.qEntries) == 0 {
		b.WriteString(normalStyle.Render("no Q-table entries yet"))
		return b.String()
	}
	for i, e := range m.qEntries {
		line := fmt.Sprintf("%-30s -> %-20s  Q=%+.3f  n=%d", e.State, e.Action, e.Value, e.Updates)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StartTUI launches the pattern/bandit browser against a live store and
// learning engine.
func StartTUI(st *store.Store, engine *learning.Engine) error {
	_, err := tea.NewProgram(InitialModel(st, engine)).Run()
	return err
}
