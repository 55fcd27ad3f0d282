// Package ui implements the interactive library browser: a bubbletea list
// over the prompts in the library, with fuzzy filtering from bubbles.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dotprompt/dotprompt/internal/storage"
)

// promptItem adapts a library entry to the bubbles list item interface.
type promptItem struct {
	entry *storage.Entry
}

func (i promptItem) Title() string { return i.entry.Title }

func (i promptItem) Description() string {
	if i.entry.Description != "" {
		return i.entry.Description
	}
	return i.entry.Path
}

func (i promptItem) FilterValue() string {
	return i.entry.Name + " " + i.entry.Title + " " + i.entry.Description
}

type browseModel struct {
	list     list.Model
	selected *storage.Entry
}

func newBrowseModel(entries []*storage.Entry) browseModel {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, promptItem{entry: entry})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("205")).
		BorderForeground(lipgloss.Color("205"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("243")).
		BorderForeground(lipgloss.Color("205"))

	l := list.New(items, delegate, 0, 0)
	l.Title = "Prompt Library"
	l.Styles.Title = StyleTitle
	l.SetShowStatusBar(false)

	return browseModel{list: l}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Don't intercept keys while the filter input is active.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(promptItem); ok {
				m.selected = item.entry
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	return m.list.View()
}

// Browse shows the interactive prompt picker and returns the chosen entry,
// or nil when the user quit without selecting.
func Browse(entries []*storage.Entry) (*storage.Entry, error) {
	program := tea.NewProgram(newBrowseModel(entries), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run browser: %w", err)
	}
	model, ok := final.(browseModel)
	if !ok {
		return nil, nil
	}
	return model.selected, nil
}
