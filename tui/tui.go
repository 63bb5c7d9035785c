// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/lumen-cli/lumen/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Continue opens the continue-watching list instead of the library.
	Continue bool
	// Item skips browsing and starts playback immediately.
	Item mo.Option[api.MediaItem]
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	bubble := newBubble(options)

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
