// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/constant"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Lumen + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ServerURL, "http://localhost:8000", "Base URL of the media server.\nAll stream, history and subtitle calls go here")
	register(key.ServerTimeout, 60, "Timeout in seconds for media server requests.\nStream negotiation can take a while when a transcode has to spin up")
	register(key.PlaybackMode, "auto", "Default playback mode.\nAvailable options are: auto, direct, transcode.\n\"auto\" lets the network grade decide; the server still has the final word")
	register(key.PlaybackQuality, "medium", "Default transcode quality tier.\nAvailable options are: low, medium, high")
	register(key.PlaybackScale, "source", "Default target resolution.\nAvailable options are: source, 1080p, 720p, 480p, 360p.\nAnything but \"source\" forces a transcode on the server")
	register(key.PlaybackSubtitlePolicy, "soft", "How selected subtitles are applied.\nAvailable options are: off, soft, burn.\n\"burn\" renders them into the video server-side and forces a transcode")
	register(key.SessionSeekDebounceMs, 800, "Quiescence window in milliseconds before a user seek triggers stream re-negotiation")
	register(key.SessionProgressIntervalSec, 15, "Minimum seconds of playback between two history progress writes")
	register(key.SessionResumeThresholdSec, 5, "Saved positions at or below this many seconds skip the resume prompt")
	register(key.SessionTransportReloadTries, 3, "Reload attempts for recoverable segmented transport errors before giving up")
	register(key.SessionDefaultDownlinkMbps, 10, "Downlink estimate in Mbit/s assumed when no network sample is available yet")
	register(key.SessionHistorySaveOnPlayback, true, "Persist playback progress to the server watch history")
	register(key.Player, "mpv", "Media player to use (e.g., mpv, iina)")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching the library")
	register(key.SearchLimit, 50, "Limit of library search results to show")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUISearchPromptString, "> ", "Search prompt string to use")
	register(key.TUIShowIDs, false, "Show server item IDs under list items")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
