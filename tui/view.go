// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/icon"
	"github.com/lumen-cli/lumen/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case moviesState:
		output = b.viewMovies()
	case seriesState:
		output = b.viewSeries()
	case episodesState:
		output = b.viewEpisodes()
	case continueState:
		output = b.viewContinue()
	case searchState:
		output = b.viewSearch()
	case resultsState:
		output = b.viewResults()
	case resumeState:
		output = b.viewResume()
	case watchState:
		output = b.viewWatch()
	case subtitlesState:
		output = b.viewSubtitles()
	case settingsState:
		output = b.viewSettings()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewMovies() string {
	return listExtraPaddingStyle.Render(b.moviesC.View())
}

func (b *statefulBubble) viewSeries() string {
	return listExtraPaddingStyle.Render(b.seriesC.View())
}

func (b *statefulBubble) viewEpisodes() string {
	return listExtraPaddingStyle.Render(b.episodesC.View())
}

func (b *statefulBubble) viewContinue() string {
	return listExtraPaddingStyle.Render(b.continueC.View())
}

func (b *statefulBubble) viewResults() string {
	return listExtraPaddingStyle.Render(b.resultsC.View())
}

func (b *statefulBubble) viewResume() string {
	return listExtraPaddingStyle.Render(b.resumeC.View())
}

func (b *statefulBubble) viewSubtitles() string {
	return listExtraPaddingStyle.Render(b.subtitlesC.View())
}

func (b *statefulBubble) viewSettings() string {
	return listExtraPaddingStyle.Render(b.settingsC.View())
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Library"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s (tab to accept)", icon.Get(icon.Search), suggestion)))
	}

	return b.renderLines(true, lines)
}

// viewWatch renders the live playback dashboard for the active session.
func (b *statefulBubble) viewWatch() string {
	if b.controller == nil {
		return b.viewLoading()
	}

	title := b.controller.Item().Title
	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(fmt.Sprintf(icon.Get(icon.Progress)+" %s", style.Fg(color.Purple)(title))),
		"",
	}

	lines = append(lines, b.viewPlaybackStatus()...)
	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewPlaybackStatus() []string {
	pos := b.controller.Position()
	dur := b.controller.Duration()

	var percent float64
	if dur > 0 {
		percent = pos / dur
	}

	stateIcon := icon.Get(icon.Play)
	if b.controller.Paused() {
		stateIcon = icon.Get(icon.Pause)
	}

	timeline := fmt.Sprintf("%s %s / %s", stateIcon, formatTime(pos), formatTime(dur))
	if sub, ok := b.controller.Subtitle().Get(); ok {
		timeline += "  " + style.Faint(fmt.Sprintf("%s %s", icon.Get(icon.Subtitle), sub.Lang))
	}

	lines := []string{
		b.progressC.ViewAs(percent),
		"",
		style.Truncate(b.width)(timeline),
	}

	if b.loading || b.progressStatus != "" {
		lines = append(lines, "", style.Truncate(b.width)(b.spinnerC.View()+" "+b.progressStatus))
	}

	var transport string
	switch b.controller.Transport() {
	case api.Progressive:
		transport = "direct play"
	case api.Segmented:
		transport = "transcoded"
	}
	if transport != "" {
		lines = append(lines, "", style.Faint(transport))
	}

	return lines
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError.Error()))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
