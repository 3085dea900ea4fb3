package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// persistent flags
	cfgFile          string
	enableDebugMode  bool
	truncateDebugLog bool
	historyDBPath    string
)

var rootCmd = &cobra.Command{
	Use:   "treediff",
	Short: "Structural diff for JSON and YAML documents",
	Long: `treediff compares two nested documents (mappings, sequences and scalar
leaves) and prints the additions, deletions and updates that turn the left
document into the right one. Versions of a document can be tracked in a local
history database and explored later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupDebugLog()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		closeDebugLog()
	},
}

var setupLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	cobra.OnInitialize(initConfig)

	// global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.treediff.yaml)")
	rootCmd.PersistentFlags().BoolVar(&enableDebugMode, "debug", false,
		"Enable debug mode, which will print additional information to the debug.log file")
	rootCmd.PersistentFlags().BoolVar(&truncateDebugLog, "truncate-debug", false,
		"Truncate the debug.log file on startup, if it exists")
	rootCmd.PersistentFlags().StringVar(&historyDBPath, "db", "treediff.db",
		"Path to the history database used by track and history")
	rootCmd.PersistentFlags().Bool("no-durable-sync", false,
		"Skip fsync on every commit to improve throughput (unsafe on crashes)")

	// allow some flags to be set via environment variables / config file
	mustBind("debug",
		viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	mustBind("truncate-debug",
		viper.BindPFlag("truncate-debug", rootCmd.PersistentFlags().Lookup("truncate-debug")))
	mustBind("db",
		viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db")))
	mustBind("no-durable-sync",
		viper.BindPFlag("no-durable-sync", rootCmd.PersistentFlags().Lookup("no-durable-sync")))
}

// exitCodeError ends the process with [code] without printing anything.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var exitErr exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	setupLog.Error().Err(err).Msg("treediff failed")
	os.Exit(2)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".treediff")
	}

	viper.SetEnvPrefix("treediff")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		setupLog.Debug().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

var debugLogFile io.Closer

// setupDebugLog points log.Logger at debug.log when debug mode is enabled.
// Otherwise nothing is logged, as the output would mix with the diff or break the TUI.
func setupDebugLog() error {
	if !viper.GetBool("debug") {
		log.Logger = zerolog.Nop()
		return nil
	}

	fileMode := os.O_CREATE | os.O_WRONLY
	if viper.GetBool("truncate-debug") {
		fileMode |= os.O_TRUNC
	} else {
		fileMode |= os.O_APPEND
	}
	logFile, err := os.OpenFile("debug.log", fileMode, 0o644)
	if err != nil {
		return fmt.Errorf("opening debug log file: %w", err)
	}
	debugLogFile = logFile

	log.Logger = zerolog.New(logFile).With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.DebugLevel)
	return nil
}

func closeDebugLog() {
	if debugLogFile == nil {
		return
	}
	if err := debugLogFile.Close(); err != nil {
		setupLog.Error().Err(err).Msg("Error closing debug log file")
	}
	debugLogFile = nil
}

func mustBind(flagName string, err error) {
	if err != nil {
		setupLog.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
