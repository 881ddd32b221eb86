package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/envctl/envctl/internal/bitwarden"
	"github.com/envctl/envctl/internal/keystore"
	"github.com/envctl/envctl/internal/project"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	bwSaveEnv          string
	bwSaveNote         string
	bwSaveKeepVersions bool
)

func init() {
	bwSaveCmd.Flags().StringVarP(&bwSaveEnv, "env", "e", "", "save only this environment's key")
	bwSaveCmd.Flags().StringVar(&bwSaveNote, "note", "", "attach a note to the saved item(s)")
	bwSaveCmd.Flags().BoolVar(&bwSaveKeepVersions, "keep-versions", false, "archive the previous item under a versioned name instead of overwriting")
}

func resetBwSaveCommandState() {
	bwSaveEnv = ""
	bwSaveNote = ""
	bwSaveKeepVersions = false
}

var bwSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save private keys from .env.keys to the vault",
	Long: `Saves every private key in .env.keys (or just --env's) to the vault as
secure notes named <project>/<environment>. Existing items are updated in
place; with --keep-versions the previous item is renamed to
<project>/<environment>/<timestamp> first.

Failures on individual keys are reported and saving continues.

Examples:
  envctl bw save
  envctl bw save --env production --note "rotated after incident"
  envctl bw save --keep-versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting bw save command")
		s, cleanup := startSpinner("Saving keys to Bitwarden...")
		defer cleanup()

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		if msg, ok := vaultPrecondition(); !ok {
			s.FinalMSG = msg
			return errReported
		}

		store, err := keystore.Load(dir)
		if err != nil {
			return failf("failed to read key store: %v", err)
		}
		if !store.Exists || len(store.Keys) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " Nothing to save: " + ui.Path.Sprint(keystore.FileName) + " is missing or empty\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envctl init") + " to encrypt your env files first"
			return errReported
		}

		type entry struct{ env, keyName, value string }
		var entries []entry
		for name, value := range store.Keys {
			env, ok := keystore.EnvironmentFromKeyName(name)
			if !ok {
				continue
			}
			if bwSaveEnv != "" && env != bwSaveEnv {
				continue
			}
			entries = append(entries, entry{env, name, value})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].env < entries[j].env })

		if len(entries) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " No key found for environment " + ui.Highlight.Sprint(bwSaveEnv) + "\n" +
				ui.Info.Sprint("→") + " Check the " + ui.Flag.Sprint("--env") + " value against " + ui.Code.Sprint("envctl status")
			return errReported
		}

		projectName := project.Detect(dir).Name
		Logger.Debugf("Vault namespace: %s", projectName)

		if err := bitwarden.Sync(); err != nil {
			return failf("failed to sync vault: %v", err)
		}
		folder, err := bitwarden.FindOrCreateFolder(bwFolder)
		if err != nil {
			return failf("failed to locate vault folder %q: %v", bwFolder, err)
		}
		Logger.Debugf("Using folder %s (%s)", folder.Name, folder.ID)

		var saved, failed []string
		for _, e := range entries {
			if err := saveKeyItem(projectName, e.env, e.keyName, e.value, folder.ID); err != nil {
				Logger.Errorf("Failed to save %s: %v", e.env, err)
				failed = append(failed, e.env)
				continue
			}
			saved = append(saved, e.env)
		}

		var b strings.Builder
		if len(saved) > 0 {
			b.WriteString(ui.Success.Sprint("✓") + fmt.Sprintf(" Saved %d key(s) to %s: %s",
				len(saved), ui.Highlight.Sprint(folder.Name), strings.Join(saved, ", ")))
		}
		if len(failed) > 0 {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(ui.Error.Sprint("✗") + fmt.Sprintf(" Failed %d key(s): %s", len(failed), strings.Join(failed, ", ")))
		}
		s.FinalMSG = b.String()
		if len(failed) > 0 {
			return errReported
		}
		return nil
	},
}

// saveKeyItem creates or updates the vault item for one environment key.
func saveKeyItem(projectName, env, keyName, value, folderID string) error {
	name := bitwarden.ItemName(projectName, env)
	items, err := bitwarden.ListItems(name, folderID)
	if err != nil {
		return err
	}

	var existing *bitwarden.Item
	for i := range items {
		if items[i].Name == name {
			existing = &items[i]
			break
		}
	}

	fresh := bitwarden.NewKeyItem(projectName, env, keyName, value, folderID, bwSaveNote)

	if existing == nil {
		return bitwarden.CreateItem(fresh)
	}

	if bwSaveKeepVersions {
		stamp := time.Now().Format("20060102150405")
		if created, ok := existing.FieldValue(bitwarden.FieldCreated); ok {
			if t, err := time.Parse(time.RFC3339, created); err == nil {
				stamp = t.Format("20060102150405")
			}
		}
		archived := bitwarden.ArchivedItem(*existing, projectName, env, stamp)
		if err := bitwarden.EditItem(archived); err != nil {
			return fmt.Errorf("failed to archive previous version: %w", err)
		}
		return bitwarden.CreateItem(fresh)
	}

	// Update in place, keeping the original created stamp.
	updated := fresh
	updated.ID = existing.ID
	if created, ok := existing.FieldValue(bitwarden.FieldCreated); ok {
		for i := range updated.Fields {
			if updated.Fields[i].Name == bitwarden.FieldCreated {
				updated.Fields[i].Value = created
			}
		}
	}
	return bitwarden.EditItem(updated)
}
