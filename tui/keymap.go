// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm,
	watch,
	back,
	remove,
	openMovies, openSeries, openContinue,
	openSearch,
	acceptSearchSuggestion,
	playPause,
	subtitles,
	settings,
	up, down, left, right,
	top, bottom,
	filter,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the specified application state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		watch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("play")),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		openMovies: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "movies"),
		),
		openSeries: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "series"),
		),
		openContinue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "continue watching"),
		),
		openSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept search suggestion"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		subtitles: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "subtitles"),
		),
		settings: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "playback settings"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.back, k.forceQuit))
	case moviesState:
		return h(k.watch, k.openSeries, k.openContinue, k.openSearch), h(k.watch, k.openSeries, k.openContinue, k.openSearch, k.settings, k.quit)
	case seriesState:
		return h(k.confirm, k.openMovies, k.openContinue, k.openSearch), h(k.confirm, k.openMovies, k.openContinue, k.openSearch, k.settings, k.quit)
	case episodesState:
		return to2(h(k.watch, k.back))
	case continueState:
		return to2(h(k.watch, k.remove, k.back))
	case searchState:
		return to2(h(k.confirm, k.acceptSearchSuggestion, k.back))
	case resultsState:
		return to2(h(k.watch, k.back))
	case resumeState:
		return to2(h(k.confirm, k.back))
	case watchState:
		return h(k.playPause, k.subtitles, k.settings, k.back), h(k.playPause, k.subtitles, k.settings, k.back, k.forceQuit)
	case subtitlesState:
		return to2(h(k.confirm, k.back))
	case settingsState:
		return to2(h(k.confirm, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
