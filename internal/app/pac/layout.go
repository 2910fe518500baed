package pac

import (
	"path/filepath"
)

const (
	packDirName      = "pack"
	stateDirName     = ".pac"
	packfileName     = "packfile"
	settingsFileName = "pac.toml"
	loaderDirName    = "plugin"
	loaderFileName   = "_pac.vim"
)

// Layout locates the files and directories pac manages within an editor's config directory.
// The provided paths must use the host OS's path separators.
type Layout struct {
	// VimDir is the editor's config directory, e.g. ~/.vim or ~/.config/nvim.
	VimDir string
}

// PackDir is the directory packages are installed to, following the editor's packages layout
// (pack/<category>/{start,opt}/<name>).
func (l Layout) PackDir() string {
	return filepath.Join(l.VimDir, packDirName)
}

// StateDir is the directory of pac's own files, including per-plugin config files.
func (l Layout) StateDir() string {
	return filepath.Join(l.VimDir, stateDirName)
}

func (l Layout) PackfilePath() string {
	return filepath.Join(l.StateDir(), packfileName)
}

func (l Layout) SettingsPath() string {
	return filepath.Join(l.StateDir(), settingsFileName)
}

// ConfigDir is the directory of per-plugin config files.
func (l Layout) ConfigDir() string {
	return l.StateDir()
}

// LoaderPath is the path of the generated file which the editor sources to load plugins.
func (l Layout) LoaderPath() string {
	return filepath.Join(l.VimDir, loaderDirName, loaderFileName)
}
