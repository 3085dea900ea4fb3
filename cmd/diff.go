package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/treediff/internal/filter"
	"github.com/loog-project/treediff/internal/loader"
	"github.com/loog-project/treediff/internal/ui"
	"github.com/loog-project/treediff/pkg/changefmt"
	"github.com/loog-project/treediff/pkg/diffpreview"
	"github.com/loog-project/treediff/pkg/treediff"
)

// outputPreview renders the merged tree instead of a change list.
const outputPreview = "preview"

var diffCmd = &cobra.Command{
	Use:   "diff [FLAGS] LEFT RIGHT",
	Short: "Compare two JSON or YAML documents",
	Long: `Compare two documents and print the changes that turn LEFT into RIGHT:
deletions first, then additions, then updates. Use - to read one side from stdin.

Sequences are compared by position, so an insertion at the front of a list
shows up as updates of every following element.`,
	Example: `  treediff diff old.yaml new.yaml
  treediff diff -o jsonpatch a.json b.json
  kubectl get deploy web -o yaml | treediff diff - web.yaml --filter 'Under("spec")'`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)

	outputs := make([]string, 0, len(changefmt.Formats)+1)
	for _, f := range changefmt.Formats {
		outputs = append(outputs, string(f))
	}
	outputs = append(outputs, outputPreview)

	diffCmd.Flags().StringP("output", "o", string(changefmt.FormatText),
		"Output format, one of: "+strings.Join(outputs, ", "))
	diffCmd.Flags().StringP("filter", "f", filter.DefaultExpression,
		"Expression selecting which changes to report, e.g. 'Updated() && Under(\"spec\")'")
	diffCmd.Flags().Int("max-depth", 0,
		"Fail when a document nests deeper than this (0 = unbounded)")
	diffCmd.Flags().Bool("parallel", false,
		"Run the deletion, addition and update passes concurrently")
	diffCmd.Flags().BoolP("interactive", "i", false,
		"Explore the differences in a terminal UI")
	diffCmd.Flags().Bool("only-changes", false,
		"With --output preview, hide unchanged parts of the documents")
	diffCmd.Flags().Bool("exit-code", false,
		"Exit with status 1 when there are differences")

	for _, name := range []string{"output", "filter", "max-depth", "parallel", "interactive", "only-changes", "exit-code"} {
		mustBind(name, viper.BindPFlag("diff."+name, diffCmd.Flags().Lookup(name)))
	}

	_ = diffCmd.RegisterFlagCompletionFunc("output",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return outputs, cobra.ShellCompDirectiveNoFileComp
		})
}

func runDiff(w io.Writer, leftPath, rightPath string) error {
	if leftPath == loader.Stdin && rightPath == loader.Stdin {
		return errors.New("only one side can be read from stdin")
	}

	output := viper.GetString("diff.output")
	var format changefmt.Format
	if output != outputPreview {
		var err error
		if format, err = changefmt.ParseFormat(output); err != nil {
			return err
		}
	}

	f, err := filter.Compile(viper.GetString("diff.filter"))
	if err != nil {
		return err
	}

	left, err := loader.Load(leftPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", leftPath, err)
	}
	right, err := loader.Load(rightPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", rightPath, err)
	}

	differ := treediff.New(
		treediff.WithMaxDepth(viper.GetInt("diff.max-depth")),
		treediff.WithParallel(viper.GetBool("diff.parallel")),
		treediff.WithLogger(log.Logger),
	)
	changes, err := differ.Diff(left, right)
	if err != nil {
		return fmt.Errorf("comparing %s and %s: %w", leftPath, rightPath, err)
	}
	if changes, err = f.Apply(changes); err != nil {
		return err
	}

	log.Debug().
		Str("left", leftPath).
		Str("right", rightPath).
		Stringer("filter", f).
		Int("changes", len(changes)).
		Msg("compared documents")

	switch {
	case viper.GetBool("diff.interactive"):
		err = ui.Run(ui.NewDiffView(leftPath+" → "+rightPath, left, right, changes))
	case output == outputPreview:
		opts := diffpreview.DefaultRenderOptions
		opts.OnlyChanges = viper.GetBool("diff.only-changes")
		_, err = io.WriteString(w, diffpreview.RenderYAML(
			diffpreview.AnnotateChanges(left, right, changes), diffpreview.DarkTheme, opts))
	default:
		err = changefmt.Write(w, changes, format)
	}
	if err != nil {
		return err
	}

	if viper.GetBool("diff.exit-code") && len(changes) > 0 {
		return exitCodeError{code: 1}
	}
	return nil
}
