package utils

import (
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

const themeFileName = "theme.json"

// Theme of the terminal output, optionally overridden by theme.json in the
// config dir. Message colors are raw ANSI sequences, the agent log colors are
// hex values ("#8CA5BE"). NO_COLOR disables all of it.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`

	Step    string `json:"step"`
	Thought string `json:"thought"`
	Warning string `json:"warning"`
	Failure string `json:"failure"`
}

func defaultTheme() *Theme {
	return &Theme{
		Primary:   "\u001b[38;2;110;130;150m",
		Secondary: "\u001b[38;2;140;165;190m",
		User:      "\u001b[36m",
		Assistant: "\u001b[34m",

		Step:    "#8CA5BE",
		Thought: "#6E8296",
		Warning: "#D7AF5F",
		Failure: "#D75F5F",
	}
}

var globalTheme = *defaultTheme()

// LoadTheme from configDirPath. Fields missing in the file keep their defaults.
func LoadTheme(configDirPath string) error {
	conf, err := LoadConfigFromFile(configDirPath, themeFileName, defaultTheme())
	if err != nil {
		return fmt.Errorf("load theme config: %w", err)
	}
	globalTheme = conf
	return nil
}

// CurrentTheme returns a copy of the loaded theme.
func CurrentTheme() Theme {
	return globalTheme
}

func NoColor() bool {
	return misc.Truthy(os.Getenv("NO_COLOR"))
}

const ansiReset = "\u001b[0m"

// Colorize wraps s in color, unless color is empty or NO_COLOR is set.
func Colorize(color, s string) string {
	if NoColor() || color == "" {
		return s
	}
	return color + s + ansiReset
}

// RoleColor of a conversation role. Anything but the user is the assistant.
func RoleColor(role string) string {
	if role == "user" {
		return globalTheme.User
	}
	return globalTheme.Assistant
}

func ThemePrimaryColor() string   { return globalTheme.Primary }
func ThemeSecondaryColor() string { return globalTheme.Secondary }
