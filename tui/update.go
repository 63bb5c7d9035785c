// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/query"
	"github.com/lumen-cli/lumen/session"
	"github.com/lumen-cli/lumen/settings"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/mo"
)

// resultsMsg carries client-side search hits for the results list.
type resultsMsg struct {
	query string
	items []list.Item
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case sessionMsg:
		return b.handleSessionEvent(msg.ev)
	case attachedMsg:
		if b.controller == nil {
			// The session ended while the attach was in flight.
			msg.driver.Close()
			return b, cmd
		}
		if b.driver != nil {
			// A restart raced an older attach; only one driver may hold
			// the player at a time.
			b.driver.Close()
		}
		b.driver = msg.driver
		return b, tea.Batch(cmd, b.pumpDriver())
	case driverMsg:
		if !msg.ok {
			// Channel closed with the driver; the controller already saw
			// the terminal event.
			return b, cmd
		}
		model, sessionCmd := b.handleSessionEvent(sessionEvent(msg.ev))
		return model, tea.Batch(cmd, sessionCmd, b.pumpDriver())
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			return b, tea.Sequence(b.endSession(), tea.Quit)
		}

		// Input Guard: Ignore non-priority keys during asynchronous operations.
		if b.busy && b.state != watchState && b.state != errorState {
			return b, nil
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			onListBack := func(l *list.Model) tea.Cmd {
				l.ResetSelected()
				l.ResetFilter()
				return tea.Batch(cmd, l.NewStatusMessage(""))
			}

			switch b.state {
			case searchState:
				b.inputC.SetValue("")
			case watchState, resumeState:
				cmd = tea.Batch(cmd, b.endSession())
			case subtitlesState:
				// Return to the live session instead of popping history.
				if b.controller != nil {
					b.setState(watchState)
					return b, cmd
				}
			case settingsState:
				if err := b.saveSettings(); err != nil {
					b.raiseError(err)
					return b, cmd
				}
				cmd = tea.Batch(cmd, func() tea.Msg { return "Playback settings saved" })
				if b.controller != nil {
					b.setState(watchState)
					return b, cmd
				}
			case moviesState:
				if b.moviesC.FilterState() != list.Unfiltered {
					b.moviesC, cmd = b.moviesC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.moviesC)
			case seriesState:
				if b.seriesC.FilterState() != list.Unfiltered {
					b.seriesC, cmd = b.seriesC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.seriesC)
			case episodesState:
				if b.episodesC.FilterState() != list.Unfiltered {
					b.episodesC, cmd = b.episodesC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.episodesC)
			case continueState:
				if b.continueC.FilterState() != list.Unfiltered {
					b.continueC, cmd = b.continueC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.continueC)
			case resultsState:
				if b.resultsC.FilterState() != list.Unfiltered {
					b.resultsC, cmd = b.resultsC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.resultsC)
			}

			b.previousState()
			b.stopLoading()
			return b, cmd
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case moviesState:
		return b.updateMovies(msg)
	case seriesState:
		return b.updateSeries(msg)
	case episodesState:
		return b.updateEpisodes(msg)
	case continueState:
		return b.updateContinue(msg)
	case searchState:
		return b.updateSearch(msg)
	case resultsState:
		return b.updateResults(msg)
	case resumeState:
		return b.updateResume(msg)
	case watchState:
		return b.updateWatch(msg)
	case subtitlesState:
		return b.updateSubtitles(msg)
	case settingsState:
		return b.updateSettings(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

// handleSessionEvent feeds one event into the playback controller, executes
// the commands it emits, and reflects the resulting state in the UI.
func (b *statefulBubble) handleSessionEvent(ev session.Event) (tea.Model, tea.Cmd) {
	if b.controller == nil || ev == nil {
		return b, nil
	}

	cmd := b.execute(b.controller.Handle(ev))

	switch b.controller.State() {
	case session.AwaitingResumeDecision:
		b.stopLoading()
		resumeLabel := fmt.Sprintf("Resume from %s", formatTime(b.controller.ResumePosition()))
		cmd = tea.Batch(cmd, b.resumeC.SetItems([]list.Item{
			&listItem{internal: resumeLabel},
			&listItem{internal: "Start from the beginning"},
		}))
		b.resumeC.ResetSelected()
		if b.state != resumeState {
			b.newState(resumeState)
		}

	case session.Loading:
		b.progressStatus = "Buffering"

	case session.Playing:
		b.stopLoading()
		b.progressStatus = ""
		if b.state == resumeState || b.state == loadingState {
			b.setState(watchState)
		}

	case session.Finished:
		item := b.controller.Item()
		b.controller = nil
		cmd = tea.Batch(cmd, b.endSession(), func() tea.Msg {
			return fmt.Sprintf("Finished %s", item.Title)
		})
		b.stopLoading()
		if b.state == watchState || b.state == resumeState || b.state == loadingState {
			b.previousState()
		}

	case session.Error:
		err := b.controller.Err()
		b.controller = nil
		cmd = tea.Batch(cmd, b.endSession())
		b.stopLoading()
		b.raiseError(err)

	case session.Idle:
		// The player went away on its own; teardown commands are already queued.
		b.controller = nil
		cmd = tea.Batch(cmd, b.endSession())
		b.stopLoading()
		if b.state == watchState || b.state == resumeState || b.state == loadingState {
			b.previousState()
		}
	}

	return b, cmd
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds = make([]tea.Cmd, 0)
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.statesHistory.Len() > 0 {
				b.previousState()
			} else {
				return b, tea.Quit
			}
		}
	case moviesMsg:
		b.movies = msg
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}
		cmds = append(cmds, b.moviesC.SetItems(items))
		b.newState(moviesState)
		b.stopLoading()
	case seriesMsg:
		b.series = msg
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}
		cmds = append(cmds, b.seriesC.SetItems(items))
		b.newState(seriesState)
		b.stopLoading()
	case episodesMsg:
		b.selectedSeries = msg.series
		entries := msg.entries
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Season != entries[j].Season {
				return entries[i].Season < entries[j].Season
			}
			return entries[i].Episode < entries[j].Episode
		})

		items := make([]list.Item, len(entries))
		for i := range entries {
			items[i] = &listItem{internal: episodeItem{entry: entries[i], series: msg.series}}
		}
		cmds = append(cmds, b.episodesC.SetItems(items))
		b.episodesC.Title = fmt.Sprintf("Episodes - %s", msg.series.Title)
		b.newState(episodesState)
		b.stopLoading()
	case continueMsg:
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}
		cmds = append(cmds, b.continueC.SetItems(items))
		b.newState(continueState)
		b.stopLoading()
	case resultsMsg:
		cmds = append(cmds, b.resultsC.SetItems(msg.items))
		b.resultsC.Title = fmt.Sprintf("Search Results - %s", msg.query)
		b.resultsC.ResetSelected()
		b.newState(resultsState)
		b.stopLoading()
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateMovies(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.moviesC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.moviesC.Items()); n > 0 && b.moviesC.Index() == 0 {
				b.moviesC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.moviesC.Items()); n > 0 && b.moviesC.Index() == n-1 {
				b.moviesC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.openSeries):
			return b.openSeries()
		case bubblesKey.Matches(msg, b.keymap.openContinue):
			return b.openContinue()
		case bubblesKey.Matches(msg, b.keymap.openSearch):
			return b.openSearch()
		case bubblesKey.Matches(msg, b.keymap.settings):
			return b.openSettings()
		case bubblesKey.Matches(msg, b.keymap.watch):
			if b.moviesC.SelectedItem() == nil {
				break
			}
			movie := b.moviesC.SelectedItem().(*listItem).internal.(api.MovieEntry)
			go query.Remember(movie.Title, 1)
			return b, b.startSession(movie.Item())
		}
	}

	b.moviesC, cmd = b.moviesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSeries(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.seriesC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.seriesC.Items()); n > 0 && b.seriesC.Index() == 0 {
				b.seriesC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.seriesC.Items()); n > 0 && b.seriesC.Index() == n-1 {
				b.seriesC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.openMovies):
			return b.openMovies()
		case bubblesKey.Matches(msg, b.keymap.openContinue):
			return b.openContinue()
		case bubblesKey.Matches(msg, b.keymap.openSearch):
			return b.openSearch()
		case bubblesKey.Matches(msg, b.keymap.settings):
			return b.openSettings()
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.seriesC.SelectedItem() == nil {
				break
			}
			series := b.seriesC.SelectedItem().(*listItem).internal.(api.SeriesEntry)
			go query.Remember(series.Title, 2)
			b.progressStatus = fmt.Sprintf("Loading episodes for %s", series.Title)
			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.loadEpisodes(series))
		}
	}

	b.seriesC, cmd = b.seriesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateEpisodes(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.episodesC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.episodesC.Items()); n > 0 && b.episodesC.Index() == 0 {
				b.episodesC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.episodesC.Items()); n > 0 && b.episodesC.Index() == n-1 {
				b.episodesC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.watch):
			if b.episodesC.SelectedItem() == nil {
				break
			}
			episode := b.episodesC.SelectedItem().(*listItem).internal.(episodeItem)
			return b, b.startSession(episode.item())
		}
	}

	b.episodesC, cmd = b.episodesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateContinue(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case continueMsg:
		items := make([]list.Item, len(msg))
		for i := range msg {
			items[i] = &listItem{internal: msg[i]}
		}
		return b, b.continueC.SetItems(items)
	case tea.KeyMsg:
		if b.continueC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.continueC.Items()); n > 0 && b.continueC.Index() == 0 {
				b.continueC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.continueC.Items()); n > 0 && b.continueC.Index() == n-1 {
				b.continueC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.openMovies):
			return b.openMovies()
		case bubblesKey.Matches(msg, b.keymap.openSeries):
			return b.openSeries()
		case bubblesKey.Matches(msg, b.keymap.openSearch):
			return b.openSearch()
		case bubblesKey.Matches(msg, b.keymap.settings):
			return b.openSettings()
		case bubblesKey.Matches(msg, b.keymap.remove):
			if b.continueC.SelectedItem() == nil {
				break
			}
			entry := b.continueC.SelectedItem().(*listItem).internal.(api.ContinueEntry)
			return b, func() tea.Msg {
				if err := b.client.ClearProgress(context.Background(), entry.Item); err != nil && !api.IsNotFound(err) {
					return err
				}
				entries, err := b.client.ContinueWatching(context.Background())
				if err != nil {
					return err
				}
				return continueMsg(entries)
			}
		case bubblesKey.Matches(msg, b.keymap.watch):
			if b.continueC.SelectedItem() == nil {
				break
			}
			entry := b.continueC.SelectedItem().(*listItem).internal.(api.ContinueEntry)
			return b, b.startSession(entry.Item)
		}
	}

	b.continueC, cmd = b.continueC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm) && b.inputC.Value() != "":
			b.progressStatus = fmt.Sprintf("Searching for %s", b.inputC.Value())
			b.startLoading()
			b.newState(loadingState)
			go query.Remember(b.inputC.Value(), 1)
			return b, tea.Batch(b.searchLibrary(b.inputC.Value()), b.spinnerC.Tick)
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion) && b.searchSuggestion.IsPresent():
			b.inputC.SetValue(b.searchSuggestion.MustGet())
			b.searchSuggestion = mo.None[string]()
			b.inputC.SetCursor(len(b.inputC.Value()))
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)

	if b.inputC.Value() != "" {
		if suggestion, ok := query.Suggest(b.inputC.Value()).Get(); ok && suggestion != b.inputC.Value() {
			b.searchSuggestion = mo.Some(suggestion)
		} else {
			b.searchSuggestion = mo.None[string]()
		}
	} else if b.searchSuggestion.IsPresent() {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

// searchLibrary runs a client-side fuzzy match over the cached library,
// fetching both listings first when they have not been loaded yet.
func (b *statefulBubble) searchLibrary(q string) tea.Cmd {
	return func() tea.Msg {
		movies := b.movies
		series := b.series

		if len(movies) == 0 {
			fetched, err := b.client.Movies(context.Background())
			if err != nil {
				return err
			}
			movies = fetched
			b.movies = fetched
		}
		if len(series) == 0 {
			fetched, err := b.client.Series(context.Background())
			if err != nil {
				return err
			}
			series = fetched
			b.series = fetched
		}

		var items []list.Item
		for i := range movies {
			if fuzzy.MatchFold(q, movies[i].Title) {
				items = append(items, &listItem{internal: movies[i]})
			}
		}
		for i := range series {
			if fuzzy.MatchFold(q, series[i].Title) {
				items = append(items, &listItem{internal: series[i]})
			}
		}

		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].(*listItem).Title()) < strings.ToLower(items[j].(*listItem).Title())
		})

		return resultsMsg{query: q, items: items}
	}
}

func (b *statefulBubble) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.resultsC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.resultsC.Items()); n > 0 && b.resultsC.Index() == 0 {
				b.resultsC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.resultsC.Items()); n > 0 && b.resultsC.Index() == n-1 {
				b.resultsC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.watch, b.keymap.confirm):
			if b.resultsC.SelectedItem() == nil {
				break
			}
			switch hit := b.resultsC.SelectedItem().(*listItem).internal.(type) {
			case api.MovieEntry:
				return b, b.startSession(hit.Item())
			case api.SeriesEntry:
				b.progressStatus = fmt.Sprintf("Loading episodes for %s", hit.Title)
				b.newState(loadingState)
				return b, tea.Batch(b.startLoading(), b.loadEpisodes(hit))
			}
		}
	}

	b.resultsC, cmd = b.resultsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateResume(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.resumeC.Items()); n > 0 && b.resumeC.Index() == 0 {
				b.resumeC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.resumeC.Items()); n > 0 && b.resumeC.Index() == n-1 {
				b.resumeC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.controller == nil {
				b.previousState()
				return b, nil
			}
			fromStart := b.resumeC.Index() == 1
			b.progressStatus = "Preparing stream"
			b.setState(watchState)
			return b, tea.Batch(
				b.startLoading(),
				b.execute(b.controller.Handle(session.ResumeChosen{FromStart: fromStart})),
			)
		}
	}

	b.resumeC, cmd = b.resumeC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case subtitlesMsg:
		b.stopLoading()
		items := make([]list.Item, 0, len(msg)+1)
		items = append(items, &listItem{
			internal: "Disable subtitles",
			marked:   b.controller != nil && b.controller.Subtitle().IsAbsent(),
		})
		for i := range msg {
			items = append(items, &listItem{internal: msg[i]})
		}
		b.subtitlesC.ResetSelected()
		b.setState(subtitlesState)
		return b, b.subtitlesC.SetItems(items)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.playPause):
			if b.mpvPlayer != nil && b.mpvPlayer.IsRunning() {
				_ = b.mpvPlayer.TogglePause()
			}
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.subtitles):
			if b.controller == nil {
				return b, nil
			}
			b.progressStatus = "Loading subtitles"
			return b, tea.Batch(b.startLoading(), b.loadSubtitles(b.controller.Item()))
		case bubblesKey.Matches(msg, b.keymap.settings):
			return b.openSettings()
		}
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSubtitles(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.subtitlesC.FilterState() == list.Filtering {
			break
		}
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.subtitlesC.Items()); n > 0 && b.subtitlesC.Index() == 0 {
				b.subtitlesC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.subtitlesC.Items()); n > 0 && b.subtitlesC.Index() == n-1 {
				b.subtitlesC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.subtitlesC.SelectedItem() == nil || b.controller == nil {
				break
			}

			choice := mo.None[api.SubtitleChoice]()
			if sub, ok := b.subtitlesC.SelectedItem().(*listItem).internal.(api.Subtitle); ok {
				choice = mo.Some(api.SubtitleChoice{ID: sub.ID, Lang: sub.Lang})
			}

			b.setState(watchState)
			return b, b.execute(b.controller.Handle(session.SubtitleSelected{Choice: choice}))
		}
	}

	b.subtitlesC, cmd = b.subtitlesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.settingsC.Items()); n > 0 && b.settingsC.Index() == 0 {
				b.settingsC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.settingsC.Items()); n > 0 && b.settingsC.Index() == n-1 {
				b.settingsC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm, b.keymap.right):
			if b.settingsC.SelectedItem() == nil {
				break
			}
			row := b.settingsC.SelectedItem().(*listItem).internal.(*settingRow)
			row.cycle()
			return b, nil
		}
	}

	b.settingsC, cmd = b.settingsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}
	return b, cmd
}

// openMovies and friends switch between the top-level library views,
// loading their data on first use.
func (b *statefulBubble) openMovies() (tea.Model, tea.Cmd) {
	if len(b.moviesC.Items()) > 0 {
		b.newState(moviesState)
		return b, nil
	}
	b.progressStatus = "Loading movies"
	b.newState(loadingState)
	return b, tea.Batch(b.startLoading(), b.loadMovies())
}

func (b *statefulBubble) openSeries() (tea.Model, tea.Cmd) {
	if len(b.seriesC.Items()) > 0 {
		b.newState(seriesState)
		return b, nil
	}
	b.progressStatus = "Loading series"
	b.newState(loadingState)
	return b, tea.Batch(b.startLoading(), b.loadSeries())
}

func (b *statefulBubble) openContinue() (tea.Model, tea.Cmd) {
	b.progressStatus = "Loading continue watching"
	b.newState(loadingState)
	return b, tea.Batch(b.startLoading(), b.loadContinue())
}

func (b *statefulBubble) openSearch() (tea.Model, tea.Cmd) {
	b.newState(searchState)
	return b, b.inputC.Focus()
}

func (b *statefulBubble) openSettings() (tea.Model, tea.Cmd) {
	prefs := settings.Load()

	modes := make([]string, len(settings.Modes))
	for i, m := range settings.Modes {
		modes[i] = string(m)
	}
	policies := make([]string, len(settings.SubtitlePolicies))
	for i, p := range settings.SubtitlePolicies {
		policies[i] = string(p)
	}

	rows := []*settingRow{
		{label: "Mode", values: modes, index: indexOf(modes, string(prefs.Mode))},
		{label: "Quality", values: settings.Qualities, index: indexOf(settings.Qualities, prefs.Quality)},
		{label: "Scale", values: settings.Scales, index: indexOf(settings.Scales, prefs.Scale)},
		{label: "Subtitles", values: policies, index: indexOf(policies, string(prefs.SubtitlePolicy))},
	}

	items := make([]list.Item, len(rows))
	for i := range rows {
		items[i] = &listItem{internal: rows[i]}
	}
	b.settingsC.ResetSelected()
	b.newState(settingsState)
	return b, b.settingsC.SetItems(items)
}

// saveSettings persists the values currently shown in the settings picker.
// They apply on the next stream negotiation.
func (b *statefulBubble) saveSettings() error {
	prefs := settings.Defaults()
	for _, item := range b.settingsC.Items() {
		row := item.(*listItem).internal.(*settingRow)
		switch row.label {
		case "Mode":
			prefs.Mode = settings.Mode(row.current())
		case "Quality":
			prefs.Quality = row.current()
		case "Scale":
			prefs.Scale = row.current()
		case "Subtitles":
			prefs.SubtitlePolicy = settings.SubtitlePolicy(row.current())
		}
	}
	return settings.Save(prefs)
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return 0
}
