package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/envctl/envctl/internal/bitwarden"
	"github.com/envctl/envctl/internal/keystore"
	"github.com/envctl/envctl/internal/project"
	"github.com/envctl/envctl/internal/prompt"
	"github.com/envctl/envctl/internal/scanner"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var bwPullEnv string

func init() {
	bwPullCmd.Flags().StringVarP(&bwPullEnv, "env", "e", "", "environment to pull (e.g. production)")
}

func resetBwPullCommandState() {
	bwPullEnv = ""
}

var bwPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull a private key from the vault into .env.keys",
	Long: `Searches the vault for this project's saved keys and writes the chosen
one into .env.keys, backing the file up first. When several items match
(e.g. archived versions), you pick one from a list.

Examples:
  envctl bw pull --env production
  envctl bw pull`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting bw pull command")
		s, cleanup := startSpinner("Pulling key from Bitwarden...")
		defer cleanup()

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		if msg, ok := vaultPrecondition(); !ok {
			s.FinalMSG = msg
			return errReported
		}

		projectName := project.Detect(dir).Name

		if err := bitwarden.Sync(); err != nil {
			return failf("failed to sync vault: %v", err)
		}
		folder, err := bitwarden.FindOrCreateFolder(bwFolder)
		if err != nil {
			return failf("failed to locate vault folder %q: %v", bwFolder, err)
		}

		search := projectName + "/"
		if bwPullEnv != "" {
			search = bitwarden.ItemName(projectName, bwPullEnv)
		}
		items, err := bitwarden.ListItems(search, folder.ID)
		if err != nil {
			return failf("failed to search vault: %v", err)
		}

		// Keep only this project's items.
		var matches []bitwarden.Item
		for _, item := range items {
			if strings.HasPrefix(item.Name, projectName+"/") {
				matches = append(matches, item)
			}
		}
		if len(matches) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " No saved keys found for " + ui.Highlight.Sprint(search) + "\n" +
				ui.Info.Sprint("→") + " Save one first: " + ui.Code.Sprint("envctl bw save")
			return errReported
		}

		item := matches[0]
		if len(matches) > 1 {
			s.Stop()
			var names []string
			for _, m := range matches {
				label := m.Name
				if updated, ok := m.FieldValue(bitwarden.FieldUpdated); ok {
					label += "  " + ui.Muted.Sprint(updated)
				}
				names = append(names, label)
			}
			index, err := prompt.Select("Which item?", names)
			if err != nil {
				s.FinalMSG = ui.Warning.Sprint("⚠") + " Pull cancelled."
				return nil
			}
			item = matches[index]
			s.Restart()
		}

		value := item.PrivateKey()
		if value == "" {
			s.FinalMSG = ui.Error.Sprint("✗") + " Item " + ui.Highlight.Sprint(item.Name) + " holds no key"
			return errReported
		}

		env, ok := item.FieldValue(bitwarden.FieldEnvironment)
		if !ok {
			// Fall back to the name convention <project>/<env>[/<version>].
			parts := strings.Split(item.Name, "/")
			if len(parts) < 2 {
				s.FinalMSG = ui.Error.Sprint("✗") + " Cannot tell which environment " + ui.Highlight.Sprint(item.Name) + " belongs to"
				return errReported
			}
			env = parts[1]
		}

		store, err := keystore.Load(dir)
		if err != nil {
			return failf("failed to read key store: %v", err)
		}
		if backupPath, err := store.Backup(); err != nil {
			return failf("failed to back up key store: %v", err)
		} else if backupPath != "" {
			Logger.Infof("Key store backed up to %s", backupPath)
		}

		keyName := keystore.KeyName(env)
		if err := store.SetKey(keyName, value); err != nil {
			return failf("failed to write key: %v", err)
		}

		s.FinalMSG = ui.Success.Sprint("✓") + " " + ui.Highlight.Sprint(keyName) + " written to " + ui.Path.Sprint(keystore.FileName) + "\n" +
			fmt.Sprintf("  Decrypts %s", ui.Path.Sprint(scanner.FileNameForEnvironment(env)))
		return nil
	},
}
