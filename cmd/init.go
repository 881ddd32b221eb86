package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/envctl/envctl/internal/dotenvx"
	"github.com/envctl/envctl/internal/project"
	"github.com/envctl/envctl/internal/prompt"
	"github.com/envctl/envctl/internal/scanner"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var initYes bool

// standardEnvironments are offered for creation during init.
var standardEnvironments = []string{"development", "staging", "production"}

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "answer yes to all prompts")
}

func resetInitCommandState() {
	initYes = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up encrypted env files for the current project",
	Long: `Detects the project framework, installs dotenvx if needed, encrypts
existing env files, offers to create standard environments, and patches
package.json scripts and ignore files.

Encryption failures on individual files are reported and init continues
with the remaining files.

Examples:
  # Interactive setup
  envctl init

  # Accept every prompt (encrypt everything, create all standard envs)
  envctl init --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		s, cleanup := startSpinner("Inspecting project...")
		defer cleanup()

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		desc := project.Detect(dir)
		Logger.Debugf("Detected project %s (%s)", desc.Name, desc.Kind)

		if !dotenvx.Installed(dir) {
			if _, err := os.Stat(filepath.Join(dir, project.ManifestName)); err != nil {
				s.FinalMSG = ui.Error.Sprint("✗") + " dotenvx is not installed and there is no " + ui.Path.Sprint(project.ManifestName) + " to install it into\n" +
					ui.Info.Sprint("→") + " Install it globally: " + ui.Code.Sprint("npm install -g @dotenvx/dotenvx")
				return errReported
			}

			s.Stop()
			install := initYes
			if !install {
				install, err = prompt.Confirm("dotenvx is not installed. Install "+dotenvx.Package+" now?", true)
				if err != nil {
					return failf("failed to read response: %v", err)
				}
			}
			if !install {
				s.FinalMSG = ui.Warning.Sprint("⚠") + " Cannot continue without dotenvx."
				return nil
			}
			if err := dotenvx.InstallLocally(dir); err != nil {
				return failf("failed to install dotenvx: %v", err)
			}
			s.Restart()
		}

		files := scanner.Scan(dir)
		Logger.Debugf("Found %d env file(s)", len(files))

		// Pick unencrypted files to encrypt.
		var unencrypted []string
		existing := make([]string, 0, len(files))
		for _, f := range files {
			existing = append(existing, f.Environment)
			if !f.Encrypted {
				unencrypted = append(unencrypted, f.Name)
			}
		}

		toEncrypt := unencrypted
		if !initYes && len(unencrypted) > 0 {
			s.Stop()
			toEncrypt, err = prompt.PickEach("Encrypt %s?", unencrypted, true)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			s.Restart()
		}

		// Offer to create standard environments that don't exist yet.
		choice, err := prompt.ChooseNewEnvironments(standardEnvironments, existing, initYes)
		if err != nil {
			return failf("failed to choose environments: %v", err)
		}
		toCreate := choice.Selected
		if choice.NeedPrompt {
			s.Stop()
			var names []string
			for _, env := range choice.Selected {
				names = append(names, scanner.FileNameForEnvironment(env))
			}
			picked, err := prompt.PickEach("Create %s?", names, false)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			toCreate = nil
			for _, name := range picked {
				env, _ := scanner.EnvironmentFromFileName(name)
				toCreate = append(toCreate, env)
			}
			s.Restart()
		}

		for _, env := range toCreate {
			name := scanner.FileNameForEnvironment(env)
			path := filepath.Join(dir, name)
			content := fmt.Sprintf("# %s environment variables\n", env)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				Logger.Errorf("Failed to create %s: %v", name, err)
				continue
			}
			toEncrypt = append(toEncrypt, name)
		}

		// Encrypt selected files, continuing past individual failures.
		var encrypted, failed []string
		for _, name := range toEncrypt {
			Logger.Infof("Encrypting %s", name)
			if err := dotenvx.Encrypt(dir, name); err != nil {
				Logger.Errorf("Failed to encrypt %s: %v", name, err)
				failed = append(failed, name)
				continue
			}
			encrypted = append(encrypted, name)
		}

		// Patch project files.
		patched, err := project.PatchScripts(dir)
		if err != nil {
			Logger.Errorf("Failed to patch scripts: %v", err)
		}
		if _, err := project.PatchGitIgnore(dir); err != nil {
			Logger.Errorf("Failed to patch .gitignore: %v", err)
		}
		if _, err := project.PatchVercelIgnore(dir); err != nil {
			Logger.Errorf("Failed to patch .vercelignore: %v", err)
		}

		var b strings.Builder
		b.WriteString(ui.Success.Sprint("✓") + " Project " + ui.Highlight.Sprint(desc.Name))
		if desc.Kind != project.KindUnknown {
			b.WriteString(" " + ui.Muted.Sprint(desc.Kind.Display()))
		}
		b.WriteString(" is set up\n")
		if len(encrypted) > 0 {
			b.WriteString(fmt.Sprintf("  %d file(s) encrypted: %s\n", len(encrypted), strings.Join(encrypted, ", ")))
		}
		if len(failed) > 0 {
			b.WriteString(ui.Error.Sprintf("  %d file(s) failed: %s", len(failed), strings.Join(failed, ", ")) + "\n")
		}
		if len(patched) > 0 {
			b.WriteString(fmt.Sprintf("  scripts wrapped with dotenvx run: %s\n", strings.Join(patched, ", ")))
		}
		b.WriteString("\n")
		b.WriteString(ui.Info.Sprint("→") + " Back up your keys: " + ui.Code.Sprint("envctl bw save") + "\n")
		b.WriteString(ui.Info.Sprint("→") + " Push a key to Vercel: " + ui.Code.Sprint("envctl deploy --env production"))
		s.FinalMSG = b.String()
		if len(failed) > 0 {
			return errReported
		}
		return nil
	},
}
