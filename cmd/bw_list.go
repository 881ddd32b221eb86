package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/envctl/envctl/internal/bitwarden"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var bwListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved keys in the vault folder",
	Long: `Lists every item in the vault folder, grouped by project, with
created/updated stamps. Archived versions show up under their versioned
names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting bw list command")
		s, cleanup := startSpinner("Listing vault items...")
		defer cleanup()

		if msg, ok := vaultPrecondition(); !ok {
			s.FinalMSG = msg
			return errReported
		}

		if err := bitwarden.Sync(); err != nil {
			return failf("failed to sync vault: %v", err)
		}
		folder, err := bitwarden.FindOrCreateFolder(bwFolder)
		if err != nil {
			return failf("failed to locate vault folder %q: %v", bwFolder, err)
		}

		items, err := bitwarden.ListItems("", folder.ID)
		if err != nil {
			return failf("failed to list vault items: %v", err)
		}
		if len(items) == 0 {
			s.FinalMSG = ui.Warning.Sprint("⚠") + " Folder " + ui.Highlight.Sprint(folder.Name) + " is empty\n" +
				ui.Info.Sprint("→") + " Save your keys: " + ui.Code.Sprint("envctl bw save")
			return nil
		}

		// Group by the <project>/ name prefix.
		grouped := make(map[string][]bitwarden.Item)
		for _, item := range items {
			projectName := item.Name
			if i := strings.Index(item.Name, "/"); i > 0 {
				projectName = item.Name[:i]
			}
			grouped[projectName] = append(grouped[projectName], item)
		}
		projects := make([]string, 0, len(grouped))
		for name := range grouped {
			projects = append(projects, name)
		}
		sort.Strings(projects)

		var b strings.Builder
		b.WriteString(fmt.Sprintf("Folder %s: %d item(s)\n", ui.Highlight.Sprint(folder.Name), len(items)))
		for _, projectName := range projects {
			b.WriteString("\n" + ui.Highlight.Sprint(projectName) + "\n")
			group := grouped[projectName]
			sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
			for _, item := range group {
				line := "  " + item.Name
				if updated, ok := item.FieldValue(bitwarden.FieldUpdated); ok {
					line += "  " + ui.Muted.Sprint("updated "+updated)
				} else if item.RevisionDate != "" {
					line += "  " + ui.Muted.Sprint("updated "+item.RevisionDate)
				}
				if note, ok := item.FieldValue(bitwarden.FieldNote); ok && note != "" {
					line += "\n    " + ui.Muted.Sprint(note)
				}
				b.WriteString(line + "\n")
			}
		}
		s.FinalMSG = strings.TrimRight(b.String(), "\n")
		return nil
	},
}
