package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/envctl/envctl/internal/dotenvx"
	"github.com/envctl/envctl/internal/prompt"
	"github.com/envctl/envctl/internal/scanner"
	"github.com/envctl/envctl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	encryptEnv   string
	encryptAll   bool
	encryptKey   string
	encryptValue string
)

func init() {
	encryptCmd.Flags().StringVarP(&encryptEnv, "env", "e", "", "environment to encrypt (e.g. production)")
	encryptCmd.Flags().BoolVar(&encryptAll, "all", false, "encrypt every unencrypted env file")
	encryptCmd.Flags().StringVar(&encryptKey, "key", "", "set and encrypt a single variable")
	encryptCmd.Flags().StringVar(&encryptValue, "value", "", "value for --key")
}

func resetEncryptCommandState() {
	encryptEnv = ""
	encryptAll = false
	encryptKey = ""
	encryptValue = ""
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [patterns...]",
	Short: "Encrypt env files with dotenvx",
	Long: `Encrypts unencrypted env files in place using dotenvx. Without
arguments the files to encrypt are chosen interactively; pass --env,
--all, or explicit file patterns to skip the prompt.

With --key and --value, sets a single variable into the environment's
file as an encrypted value instead of encrypting a whole file.

Examples:
  envctl encrypt --env staging
  envctl encrypt --all
  envctl encrypt '.env.*'
  envctl encrypt --env production --key API_KEY --value sk-12345`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		s, cleanup := startSpinner("Encrypting...")
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

		// Single-variable mode.
		if encryptKey != "" {
			env := encryptEnv
			if env == "" {
				env = scanner.RootEnvironment
			}
			file := scanner.FileNameForEnvironment(env)
			if err := dotenvx.Set(dir, file, encryptKey, encryptValue, true); err != nil {
				return failf("failed to set %s in %s: %v", encryptKey, file, err)
			}
			s.FinalMSG = ui.Success.Sprint("✓") + " Set " + ui.Highlight.Sprint(encryptKey) + " in " + ui.Path.Sprint(file)
			return nil
		}

		var candidates []scanner.EnvFile
		if len(args) > 0 {
			candidates = scanner.Resolve(args, dir)
		} else {
			candidates = scanner.Scan(dir)
		}

		var targets []string
		available := make(map[string]string) // env -> file name
		for _, f := range candidates {
			if f.Encrypted {
				continue
			}
			targets = append(targets, f.Environment)
			available[f.Environment] = f.Name
		}

		if len(targets) == 0 {
			s.FinalMSG = ui.Success.Sprint("✓") + " Nothing to encrypt: every env file is already encrypted"
			return nil
		}

		choice, err := prompt.ChooseEnvironments(targets, encryptEnv, encryptAll, false)
		if err != nil {
			s.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
				ui.Info.Sprint("→") + " Unencrypted environments: " + strings.Join(targets, ", ") +
				"; pass " + ui.Flag.Sprint("--all") + " to encrypt every one"
			return errReported
		}
		selected := choice.Selected
		if choice.NeedPrompt {
			s.Stop()
			var names []string
			for _, env := range targets {
				names = append(names, available[env])
			}
			picked, err := prompt.PickEach("Encrypt %s?", names, true)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			selected = nil
			for _, name := range picked {
				env, _ := scanner.EnvironmentFromFileName(name)
				selected = append(selected, env)
			}
			s.Restart()
		}

		// Batch runs continue past failures; a single explicit target aborts.
		continueOnError := encryptAll || len(selected) > 1

		var done, failed []string
		for _, env := range selected {
			name := available[env]
			Logger.Infof("Encrypting %s", name)
			if err := dotenvx.Encrypt(dir, name); err != nil {
				if !continueOnError {
					return failf("failed to encrypt %s: %v", name, err)
				}
				Logger.Errorf("Failed to encrypt %s: %v", name, err)
				failed = append(failed, name)
				continue
			}
			done = append(done, name)
		}

		var b strings.Builder
		if len(done) > 0 {
			b.WriteString(ui.Success.Sprintf("✓") + fmt.Sprintf(" Encrypted %d file(s): %s", len(done), strings.Join(done, ", ")))
		}
		if len(failed) > 0 {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(ui.Error.Sprintf("✗") + fmt.Sprintf(" Failed %d file(s): %s", len(failed), strings.Join(failed, ", ")))
		}
		b.WriteString("\n" + ui.Info.Sprint("→") + " Back up the new keys: " + ui.Code.Sprint("envctl bw save"))
		s.FinalMSG = b.String()
		if len(failed) > 0 {
			return errReported
		}
		return nil
	},
}
