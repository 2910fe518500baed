package pac

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/clients/git"
)

// Settings holds defaults for command flags, loaded from pac.toml.
type Settings struct {
	// Threads is the default number of concurrent tasks.
	Threads int `toml:"threads"`
	// Timeout bounds the duration of each task, as a duration string like "2m"; it's empty for no
	// bound.
	Timeout string `toml:"timeout,omitempty"`
	// FetchAttempts is how many times a fetch failing with a transient error is tried.
	FetchAttempts int `toml:"fetch_attempts"`
	// Skip is a list of patterns of idnames skipped when updating all packages.
	Skip []string `toml:"skip,omitempty"`
	// Category is the default category of installed packages.
	Category string `toml:"category"`
}

func DefaultSettings() Settings {
	return Settings{
		Threads:       runtime.NumCPU(),
		FetchAttempts: git.DefaultFetchAttempts,
		Category:      DefaultCategory,
	}
}

// LoadSettings loads settings from a file, using defaults for anything the file doesn't set. A
// missing file results in the default settings.
func LoadSettings(filePath string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return Settings{}, errors.Wrapf(err, "couldn't read settings file %s", filePath)
	}
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, errors.Wrapf(err, "couldn't parse settings file %s", filePath)
	}
	if _, err = settings.TaskTimeout(); err != nil {
		return Settings{}, errors.Wrapf(err, "invalid settings file %s", filePath)
	}
	return settings, nil
}

// TaskTimeout parses the timeout; it's zero if no timeout is set.
func (s Settings) TaskTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't parse timeout %s", s.Timeout)
	}
	if timeout < 0 {
		return 0, errors.Errorf("timeout %s is negative", s.Timeout)
	}
	return timeout, nil
}

// MatchesSkip checks whether an idname matches any of the skip patterns, either as a glob pattern
// or as a substring.
func MatchesSkip(idname string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, idname); err == nil && ok {
			return true
		}
		if strings.Contains(idname, pattern) {
			return true
		}
	}
	return false
}
