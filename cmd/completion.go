package cmd

import (
	"context"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	bboltStore "github.com/loog-project/treediff/internal/store/bbolt"
)

var (
	cachedDocuments []string
	documentsOnce   sync.Once
)

var completionCmd = &cobra.Command{
	Use:       "completion [SHELL]",
	Short:     "Prints shell completion scripts",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// loadDocuments reads the document IDs without creating a missing database.
func loadDocuments(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	hs, err := bboltStore.New(path, nil, false)
	if err != nil {
		return nil, err
	}
	defer hs.Close()
	return hs.Documents(context.Background())
}

// documentCompletion completes the first argument with tracked document IDs
// and everything after it with files.
func documentCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	documentsOnce.Do(func() {
		if docs, err := loadDocuments(viper.GetString("db")); err == nil {
			cachedDocuments = docs
		}
	})
	return cachedDocuments, cobra.ShellCompDirectiveNoFileComp
}
