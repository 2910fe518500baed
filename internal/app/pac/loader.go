package pac

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

const loaderHeader = `" This file is generated by pac. Changes to it will be overwritten.

function! s:pac_load(name, config) abort
  execute 'packadd ' . a:name
  if filereadable(a:config)
    execute 'source ' . fnameescape(a:config)
  endif
endfunction
`

// GenerateLoader regenerates the file which the editor sources to set up packages: the configs of
// start packages are sourced, and opt packages get autocommands and stub commands which load them
// on demand.
func GenerateLoader(layout Layout, pkgs []Package) error {
	if err := writeFileAtomic(layout.LoaderPath(), []byte(MakeLoader(layout, pkgs))); err != nil {
		return errors.Wrap(err, "couldn't save plugin loader")
	}
	return nil
}

// MakeLoader makes the contents of the loader file for the packages.
func MakeLoader(layout Layout, pkgs []Package) string {
	pkgs = slices.Clone(pkgs)
	slices.SortFunc(pkgs, CompareIDNames)

	b := &strings.Builder{}
	b.WriteString(loaderHeader)
	for _, pkg := range pkgs {
		configPath := pkg.ConfigPath(layout.ConfigDir())
		if !pkg.Opt {
			if FileExists(configPath) {
				fmt.Fprintf(b, "\n\" %s\nsource %s\n", pkg.IDName, escapeVimPath(configPath))
			}
			continue
		}
		if len(pkg.ForTypes) == 0 && pkg.LoadCommand == "" {
			continue
		}

		fmt.Fprintf(b, "\n\" %s\n", pkg.IDName)
		load := fmt.Sprintf("call s:pac_load(%s, %s)", vimString(pkg.Name), vimString(configPath))
		if len(pkg.ForTypes) > 0 {
			group := "pac_" + strings.Map(groupRune, pkg.Name)
			fmt.Fprintf(b, "augroup %s\n  autocmd!\n", group)
			fmt.Fprintf(
				b, "  autocmd FileType %s ++once %s\n", strings.Join(pkg.ForTypes, ","), load,
			)
			b.WriteString("augroup END\n")
		}
		if pkg.LoadCommand != "" {
			cmd := pkg.LoadCommand
			fmt.Fprintf(
				b, "command! -nargs=* -range -bang %s delcommand %s | %s | <line1>,<line2>%s<bang> <args>\n",
				cmd, cmd, load, cmd,
			)
		}
	}
	return b.String()
}

func vimString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func escapeVimPath(s string) string {
	return strings.NewReplacer(" ", `\ `, "|", `\|`, `"`, `\"`).Replace(s)
}

func groupRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	default:
		return '_'
	}
}
