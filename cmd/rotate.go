package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/envctl/envctl/internal/dotenvx"
	"github.com/envctl/envctl/internal/keystore"
	"github.com/envctl/envctl/internal/prompt"
	"github.com/envctl/envctl/internal/scanner"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	rotateEnv string
	rotateAll bool
	rotateYes bool
)

func init() {
	rotateCmd.Flags().StringVarP(&rotateEnv, "env", "e", "", "environment to rotate (e.g. production)")
	rotateCmd.Flags().BoolVar(&rotateAll, "all", false, "rotate every environment with a key")
	rotateCmd.Flags().BoolVarP(&rotateYes, "yes", "y", false, "skip the confirmation prompt")
}

func resetRotateCommandState() {
	rotateEnv = ""
	rotateAll = false
	rotateYes = false
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate encryption keys for one or more environments",
	Long: `Generates fresh encryption keys by decrypting each selected env file,
atomically rewriting it as cleartext, stripping the old private key from
.env.keys, and re-encrypting with dotenvx (which generates a new keypair).

.env.keys is backed up to a timestamped .bak file before anything is
touched. A failure on one environment is reported and rotation continues
with the next; already-rotated environments are not rolled back.

After rotating, push the new keys wherever the old ones live:
  - envctl bw save      (vault backup)
  - envctl deploy       (deployment platform)

Examples:
  envctl rotate --env production
  envctl rotate --all --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")
		s, cleanup := startSpinner("Rotating keys...")
		defer cleanup()

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		if !dotenvx.Installed(dir) {
			s.FinalMSG = ui.Error.Sprint("✗") + " dotenvx is not installed\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envctl init") + " first"
			return errReported
		}

		store, err := keystore.Load(dir)
		if err != nil {
			return failf("failed to read key store: %v", err)
		}
		if !store.Exists || len(store.Keys) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " No keys to rotate: " + ui.Path.Sprint(keystore.FileName) + " is missing or empty\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envctl init") + " to encrypt your env files first"
			return errReported
		}

		// Only environments that are encrypted and have a key can rotate.
		var available []string
		for _, f := range scanner.Scan(dir) {
			if !f.Encrypted {
				continue
			}
			if _, ok := store.Lookup(f.Environment); ok {
				available = append(available, f.Environment)
			}
		}
		if len(available) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " No encrypted env files match the keys in " + ui.Path.Sprint(keystore.FileName)
			return errReported
		}

		choice, err := prompt.ChooseEnvironments(available, rotateEnv, rotateAll, rotateYes)
		if err != nil {
			s.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
				ui.Info.Sprint("→") + " Rotatable environments: " + strings.Join(available, ", ") +
				"; pass " + ui.Flag.Sprint("--all") + " to rotate every one"
			return errReported
		}
		selected := choice.Selected
		if choice.NeedPrompt {
			s.Stop()
			selected, err = prompt.PickEach("Rotate %s?", available, false)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			s.Restart()
		}
		if len(selected) == 0 {
			s.FinalMSG = ui.Warning.Sprint("⚠") + " Nothing selected, nothing rotated."
			return nil
		}

		if !rotateYes {
			s.Stop()
			fmt.Printf("\n%s Rotating replaces the encryption keys for: %s\n", ui.Warning.Sprint("Warning:"), strings.Join(selected, ", "))
			fmt.Println("  Old keys stop working. Vault backups and deployed keys go stale until you re-save and re-deploy.")
			fmt.Println()
			ok, err := prompt.Confirm("Do you want to continue?", false)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			if !ok {
				s.FinalMSG = ui.Warning.Sprint("⚠") + " Rotation cancelled."
				return nil
			}
			s.Restart()
		}

		backupPath, err := store.Backup()
		if err != nil {
			return failf("failed to back up key store: %v", err)
		}
		Logger.Infof("Key store backed up to %s", backupPath)

		var rotated, failed []string
		for _, env := range selected {
			if err := rotateEnvironment(dir, store, env); err != nil {
				Logger.Errorf("Failed to rotate %s: %v", env, err)
				failed = append(failed, env)
				continue
			}
			rotated = append(rotated, env)
		}

		var b strings.Builder
		if len(rotated) > 0 {
			b.WriteString(ui.Success.Sprint("✓") + fmt.Sprintf(" Rotated %d environment(s): %s\n", len(rotated), strings.Join(rotated, ", ")))
		}
		if len(failed) > 0 {
			b.WriteString(ui.Error.Sprint("✗") + fmt.Sprintf(" Failed %d environment(s): %s\n", len(failed), strings.Join(failed, ", ")))
		}
		b.WriteString("  Old key store saved at " + ui.Path.Sprint(filepath.Base(backupPath)) + "\n\n")
		b.WriteString(ui.Info.Sprint("→") + " Update your vault backup: " + ui.Code.Sprint("envctl bw save") + "\n")
		b.WriteString(ui.Info.Sprint("→") + " Re-deploy rotated keys: " + ui.Code.Sprint("envctl deploy"))
		s.FinalMSG = b.String()
		if len(failed) > 0 {
			return errReported
		}
		return nil
	},
}

// rotateEnvironment rotates one environment: decrypt, atomically rewrite
// as cleartext, strip the old key line, re-encrypt. The cleartext swap
// goes through a temp file and rename so an interrupt never leaves a
// half-written env file.
func rotateEnvironment(dir string, store *keystore.Store, env string) error {
	name := scanner.FileNameForEnvironment(env)
	path := filepath.Join(dir, name)
	Logger.Infof("Rotating %s", name)

	vars, err := dotenvx.Get(dir, name)
	if err != nil {
		return fmt.Errorf("decrypt failed: %w", err)
	}

	tmpPath := path + ".rotate.tmp"
	if err := os.WriteFile(tmpPath, []byte(dotenvx.Render(vars)), 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	// The old public key is gone from the file, so stripping the private
	// key makes dotenvx generate a fresh keypair on encrypt.
	if err := store.RemoveKey(keystore.KeyName(env)); err != nil {
		return fmt.Errorf("failed to remove old key: %w", err)
	}

	if err := dotenvx.Encrypt(dir, name); err != nil {
		return fmt.Errorf("re-encrypt failed (file is cleartext, old key is in the backup): %w", err)
	}
	return nil
}
