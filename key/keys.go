// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Server Connection - these keys locate and authenticate against the media server.
const (
	ServerURL     = "server.url"
	ServerTimeout = "server.timeout_seconds"
)

// Playback Defaults - these keys seed the persisted playback settings when no
// stored value exists yet. The live values are owned by the settings store.
const (
	PlaybackMode           = "playback.mode"
	PlaybackQuality        = "playback.quality"
	PlaybackScale          = "playback.scale"
	PlaybackSubtitlePolicy = "playback.subtitle_policy"
)

// Session Tuning - these keys control the playback session controller timers.
const (
	SessionSeekDebounceMs        = "session.seek_debounce_ms"
	SessionProgressIntervalSec   = "session.progress_interval_seconds"
	SessionResumeThresholdSec    = "session.resume_threshold_seconds"
	SessionTransportReloadTries  = "session.transport_reload_tries"
	SessionDefaultDownlinkMbps   = "session.default_downlink_mbps"
	SessionHistorySaveOnPlayback = "session.save_history"
)

// Media Playback - these keys maintain the configuration for the external video player.
const (
	Player = "player.default"
)

// Search Interaction - these keys define the UI/UX parameters for library search.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
	SearchLimit                = "search.limit"
)

// Terminal User Interface (TUI) - these keys define the shell's styling and behavior.
const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
	TUIShowIDs            = "tui.show_ids"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
