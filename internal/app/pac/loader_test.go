package pac

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMakeLoader(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	if err := EnsureExists(layout.ConfigDir()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	configured := pkg("x/configured", "configured", "default", false)
	if err := os.WriteFile(
		configured.ConfigPath(layout.ConfigDir()), []byte("let g:x = 1\n"), 0o644,
	); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	unconfigured := pkg("x/plain", "plain", "default", false)
	lazyType := pkg("x/go.vim", "go.vim", "lang", true)
	lazyType.ForTypes = []string{"go", "gomod"}
	lazyCmd := pkg("x/undotree", "undotree", "default", true)
	lazyCmd.LoadCommand = "UndotreeToggle"
	manual := pkg("x/manual", "manual", "default", true)

	loader := MakeLoader(layout, []Package{manual, lazyCmd, lazyType, unconfigured, configured})

	for _, expected := range []string{
		"function! s:pac_load(name, config) abort",
		"source " + configured.ConfigPath(layout.ConfigDir()),
		"augroup pac_go_vim",
		"autocmd FileType go,gomod ++once call s:pac_load('go.vim', '" +
			lazyType.ConfigPath(layout.ConfigDir()) + "')",
		"command! -nargs=* -range -bang UndotreeToggle delcommand UndotreeToggle | call s:pac_load(" +
			"'undotree', '" + lazyCmd.ConfigPath(layout.ConfigDir()) + "')",
	} {
		if !strings.Contains(loader, expected) {
			t.Errorf("expected loader to contain %q:\n%s", expected, loader)
		}
	}
	for _, unexpected := range []string{"x/plain", "x/manual"} {
		if strings.Contains(loader, unexpected) {
			t.Errorf("expected loader not to mention %s:\n%s", unexpected, loader)
		}
	}
	if strings.Index(loader, "x/configured") > strings.Index(loader, "x/go.vim") {
		t.Error("expected packages to be ordered by idname")
	}
}

func TestGenerateLoader(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	if err := GenerateLoader(layout, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	data, err := os.ReadFile(layout.LoaderPath())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(data) != loaderHeader {
		t.Errorf("expected only the header, got:\n%s", data)
	}
	if filepath.Base(filepath.Dir(layout.LoaderPath())) != "plugin" {
		t.Errorf("unexpected loader path %s", layout.LoaderPath())
	}
}
