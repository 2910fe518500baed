package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const bashCompletion = `_pac_bash_autocomplete() {
  local cur opts
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"
  opts=$("${COMP_WORDS[@]:0:$COMP_CWORD}" --generate-bash-completion 2>/dev/null)
  COMPREPLY=($(compgen -W "${opts}" -- "${cur}"))
  return 0
}
complete -o bashdefault -o default -o nospace -F _pac_bash_autocomplete pac
`

var completionsCmd = &cli.Command{
	Name:      "completions",
	Hidden:    true,
	Usage:     "Prints a shell completion script",
	ArgsUsage: "bash|fish",
	Action: func(c *cli.Context) error {
		switch shell := c.Args().First(); shell {
		case "", "bash":
			fmt.Print(bashCompletion)
			return nil
		case "fish":
			script, err := c.App.ToFishCompletion()
			if err != nil {
				return errors.Wrap(err, "couldn't generate fish completions")
			}
			fmt.Print(script)
			return nil
		default:
			return errors.Errorf("unsupported shell %s", shell)
		}
	},
}
