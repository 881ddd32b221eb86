package cmd

import (
	"errors"

	"github.com/envctl/envctl/internal/bitwarden"
	kerrors "github.com/envctl/envctl/internal/errors"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var bwFolder string

var bwCmd = &cobra.Command{
	Use:   "bw",
	Short: "Back up and restore private keys with Bitwarden",
	Long: `Stores dotenvx private keys as secure notes in your Bitwarden vault,
named <project>/<environment> inside a dedicated folder.

Requires the Bitwarden CLI (bw) to be installed, logged in, and
unlocked, with BW_SESSION exported.`,
}

func init() {
	bwCmd.PersistentFlags().StringVar(&bwFolder, "folder", bitwarden.DefaultFolder, "vault folder to use")

	bwCmd.AddCommand(bwSaveCmd)
	bwCmd.AddCommand(bwPullCmd)
	bwCmd.AddCommand(bwListCmd)
}

func resetBwCommandState() {
	bwFolder = bitwarden.DefaultFolder
	resetBwSaveCommandState()
	resetBwPullCommandState()
}

// vaultPrecondition checks that bw is installed and unlocked, returning
// a ready-to-print remediation message when it isn't.
func vaultPrecondition() (string, bool) {
	if !bitwarden.Installed() {
		return ui.Error.Sprint("✗") + " The Bitwarden CLI is not installed\n" +
			ui.Info.Sprint("→") + " Install it: " + ui.Code.Sprint("npm install -g @bitwarden/cli"), false
	}

	err := bitwarden.CheckUnlocked()
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, kerrors.ErrVaultUnauthenticated):
		return ui.Error.Sprint("✗") + " Not logged in to Bitwarden\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("bw login"), false
	case errors.Is(err, kerrors.ErrVaultLocked):
		return ui.Error.Sprint("✗") + " Your vault is locked\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("bw unlock") + " and " + ui.Code.Sprint("export BW_SESSION=\"...\""), false
	default:
		return ui.Error.Sprint("✗") + " Could not reach the Bitwarden CLI\n\n" +
			ui.Error.Sprint("Error: ") + err.Error(), false
	}
}
