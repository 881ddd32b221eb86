package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/envctl/envctl/internal/dotenvx"
	"github.com/envctl/envctl/internal/keystore"
	"github.com/envctl/envctl/internal/project"
	"github.com/envctl/envctl/internal/scanner"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of env files, keys, and project setup",
	Long: `Scans the current directory and reports, per environment file, whether it
is encrypted and whether a matching private key exists in .env.keys,
along with recommended next commands.

Status is purely a report: it never modifies anything and always exits 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		desc := project.Detect(dir)
		Logger.Debugf("Detected project %s (%s)", desc.Name, desc.Kind)

		files := scanner.Scan(dir)
		store, err := keystore.Load(dir)
		if err != nil {
			return failf("failed to read key store: %v", err)
		}

		fmt.Printf("Project: %s %s\n", ui.Highlight.Sprint(desc.Name), ui.Muted.Sprint(desc.Kind.Display()))
		if !dotenvx.Installed(dir) {
			if project.HasDependency(dir, dotenvx.Package) {
				fmt.Println(ui.Warning.Sprint("⚠") + " dotenvx is declared in " + ui.Path.Sprint(project.ManifestName) +
					" but not installed; run " + ui.Code.Sprint("npm install"))
			} else {
				fmt.Println(ui.Warning.Sprint("⚠") + " dotenvx is not installed; run " + ui.Code.Sprint("envctl init"))
			}
		}
		fmt.Println()

		if len(files) == 0 {
			fmt.Println(ui.Warning.Sprint("⚠") + " No .env files found")
			fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envctl init") + " to set up encrypted env files")
			return nil
		}

		report := buildStatusReport(files, store)

		fmt.Println("Environment files:")
		for _, line := range report.FileLines {
			fmt.Println("  " + line)
		}

		if store.Exists {
			fmt.Println()
			fmt.Printf("Key store: %s %s\n", ui.Path.Sprint(keystore.FileName),
				ui.Muted.Sprintf("%d key(s)", len(store.Keys)))
		} else {
			fmt.Println()
			fmt.Println("Key store: " + ui.Muted.Sprint("does not exist"))
		}

		if len(report.Warnings) > 0 {
			fmt.Println()
			for _, w := range report.Warnings {
				fmt.Println(ui.Warning.Sprint("⚠") + " " + w)
			}
		}

		if len(report.Recommendations) > 0 {
			fmt.Println()
			fmt.Println("Recommended:")
			for _, r := range report.Recommendations {
				fmt.Println("  " + ui.Info.Sprint("→") + " " + r)
			}
		}

		return nil
	},
}

// statusReport is the assembled status output, split from printing so it
// can be tested without capturing a terminal.
type statusReport struct {
	FileLines       []string
	Warnings        []string
	Recommendations []string
}

func buildStatusReport(files []scanner.EnvFile, store *keystore.Store) statusReport {
	var report statusReport

	width := 0
	for _, f := range files {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}

	for _, f := range files {
		var state string
		if f.Encrypted {
			state = ui.Success.Sprint("✓") + " encrypted"
		} else {
			state = ui.Error.Sprint("✗") + " not encrypted"
		}
		report.FileLines = append(report.FileLines, fmt.Sprintf("%-*s  %s %s",
			width, f.Name, state, ui.Muted.Sprintf("%d variable(s)", len(f.Variables))))

		if _, ok := store.Lookup(f.Environment); !ok {
			if f.Encrypted {
				report.Warnings = append(report.Warnings, fmt.Sprintf(
					"%s is encrypted but %s has no %s. Pull it with %s",
					f.Name, keystore.FileName, keystore.KeyName(f.Environment),
					ui.Code.Sprint("envctl bw pull --env "+f.Environment)))
			} else {
				report.Warnings = append(report.Warnings, fmt.Sprintf(
					"no private key for %s yet; one is generated when %s is encrypted",
					f.Environment, f.Name))
			}
		}
		if !f.Encrypted {
			report.Recommendations = append(report.Recommendations,
				ui.Code.Sprint("envctl encrypt --env "+f.Environment)+"  encrypt "+f.Name)
		}
	}

	// Keys with no matching env file usually mean a renamed or deleted file.
	// Matching goes through KeyName because hyphens and underscores collapse
	// to the same key name, so the reverse mapping is ambiguous.
	orphanStart := len(report.Warnings)
	for name := range store.Keys {
		env, ok := keystore.EnvironmentFromKeyName(name)
		if !ok {
			continue
		}
		found := false
		for _, f := range files {
			if keystore.KeyName(f.Environment) == name {
				found = true
				break
			}
		}
		if !found {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s holds %s but %s does not exist",
				keystore.FileName, name, scanner.FileNameForEnvironment(env)))
		}
	}

	// Map iteration order is random; keep the orphan-key warnings stable
	// without disturbing the file-order warnings above them.
	sort.Strings(report.Warnings[orphanStart:])

	return report
}
