// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the terminal user interface, triggering the initial data
// load or, when an item was picked on the command line, immediate playback.
func (b *statefulBubble) Init() tea.Cmd {
	if item, ok := b.options.Item.Get(); ok {
		return tea.Batch(textinput.Blink, b.startSession(item))
	}

	if b.options.Continue {
		b.progressStatus = "Loading continue watching"
		b.setState(loadingState)
		return tea.Batch(textinput.Blink, b.startLoading(), b.loadContinue())
	}

	b.progressStatus = "Loading movies"
	b.setState(loadingState)
	return tea.Batch(textinput.Blink, b.startLoading(), b.loadMovies())
}
