package commands

import (
	"github.com/spf13/cobra"

	"github.com/keyenv/keyenv-go/internal/config"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell and print it to stdout.

Load it for the current session:

  bash:       source <(keyenv completion bash)
  zsh:        source <(keyenv completion zsh)
  fish:       keyenv completion fish | source
  powershell: keyenv completion powershell | Out-String | Invoke-Expression

To install permanently, redirect the output to your shell's completion
directory, for example:

  keyenv completion bash > /etc/bash_completion.d/keyenv
  keyenv completion zsh > "${fpath[1]}/_keyenv"
  keyenv completion fish > ~/.config/fish/completions/keyenv.fish

Zsh users need compinit enabled (add "autoload -U compinit; compinit" to
~/.zshrc if completions do not appear).
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
