package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/treediff/internal/loader"
	"github.com/loog-project/treediff/internal/service"
	bboltStore "github.com/loog-project/treediff/internal/store/bbolt"
	"github.com/loog-project/treediff/pkg/changefmt"
)

var trackCmd = &cobra.Command{
	Use:   "track [FLAGS] DOCUMENT FILE",
	Short: "Record FILE as the next revision of DOCUMENT",
	Long: `Record FILE as the next revision of DOCUMENT in the history database.
The first revision stores the document as is, every later one also stores the
changes against the previous revision. Nothing is recorded when the document
did not change.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: documentCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringP("output", "o", string(changefmt.FormatText),
		"Format of the printed changes")
	mustBind("track.output", viper.BindPFlag("track.output", trackCmd.Flags().Lookup("output")))
}

// openHistory opens the history database and a tracker on top of it.
// The returned func closes both.
func openHistory() (*service.TrackerService, *bboltStore.Store, func(), error) {
	path := viper.GetString("db")
	log.Debug().Str("db", path).Msg("opening history database")

	hs, err := bboltStore.New(path, nil, !viper.GetBool("no-durable-sync"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening history database %s: %w", path, err)
	}
	tracker := service.NewTrackerService(hs, nil, log.Logger)
	return tracker, hs, func() {
		tracker.Close()
		if err := hs.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing history database")
		}
	}, nil
}

func runTrack(ctx context.Context, w io.Writer, document, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := changefmt.ParseFormat(viper.GetString("track.output"))
	if err != nil {
		return err
	}
	tree, err := loader.Load(file)
	if err != nil {
		return fmt.Errorf("loading %s: %w", file, err)
	}

	tracker, _, closeHistory, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	rev, changes, err := tracker.Commit(ctx, document, tree, file)
	var noChanges *service.NoChangesError
	switch {
	case errors.As(err, &noChanges):
		_, err = fmt.Fprintf(w, "%s: no changes since revision %s\n", document, noChanges.Latest)
		return err
	case err != nil:
		return err
	}

	if rev == 0 {
		_, err = fmt.Fprintf(w, "%s: recorded initial revision %s\n", document, rev)
		return err
	}
	if format == changefmt.FormatText {
		added, deleted, updated := changes.Count()
		if _, err := fmt.Fprintf(w, "%s: recorded revision %s (+%d -%d ~%d)\n",
			document, rev, added, deleted, updated); err != nil {
			return err
		}
	}
	return changefmt.Write(w, changes, format)
}
