package cmd

import (
	"errors"
	"fmt"
	"os"

	logger "github.com/envctl/envctl/internal/logging"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	rootCmd = &cobra.Command{
		Use:           "envctl",
		Short:         "envctl - encrypted .env files for web projects, end to end.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `envctl wires together dotenvx, the Vercel CLI, and the Bitwarden CLI to
set up, rotate, deploy, and back up encrypted environment files.

envctl never encrypts anything itself: dotenvx owns the cryptography,
Vercel owns the deployment platform, and Bitwarden owns key storage.

Typical workflow:
  envctl init         set up encryption for the current project
  envctl status       see what state your env files are in
  envctl bw save      back up private keys to your Bitwarden vault
  envctl deploy       push a decryption key to Vercel and deploy

Run 'envctl help <command>' for details on a specific command.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing envctl with verbose=%t, debug=%t", verbose, debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewFigure("envctl", "", true)
			banner.Print()
			fmt.Println()
			fmt.Println("Run 'envctl --help' to see available commands.")
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(bwCmd)
}

// errReported marks a failure whose remediation text was already printed
// through the command's final message. Execute suppresses its text but
// still propagates it, so the process exits non-zero.
var errReported = errors.New("command failed")

// failf logs the failure once and returns errReported, so Execute does
// not print the same message a second time.
func failf(msg string, args ...any) error {
	Logger.Errorf(msg, args...)
	return errReported
}

// Execute runs the root command and reports whether the process should
// exit non-zero.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

// Helper functions for testing

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// ResetGlobalState resets all global flag variables to their defaults for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetInitCommandState()
	resetEncryptCommandState()
	resetRotateCommandState()
	resetDeployCommandState()
	resetBwCommandState()
	resetBwSaveCommandState()
	resetBwPullCommandState()
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
