package cmd

import (
	"os"
	"strings"

	"github.com/envctl/envctl/internal/keystore"
	"github.com/envctl/envctl/internal/prompt"
	"github.com/envctl/envctl/internal/ui"
	"github.com/envctl/envctl/internal/vercel"

	"github.com/spf13/cobra"
)

var (
	deployEnv     string
	deployYes     bool
	deployTrigger bool
)

func init() {
	deployCmd.Flags().StringVarP(&deployEnv, "env", "e", "", "environment to deploy (e.g. production)")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "answer yes to all prompts")
	deployCmd.Flags().BoolVar(&deployTrigger, "deploy", false, "trigger a deployment after pushing the key")
}

func resetDeployCommandState() {
	deployEnv = ""
	deployYes = false
	deployTrigger = false
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Push a decryption key to Vercel and optionally deploy",
	Long: `Resolves the environment's private key from .env.keys, maps the
environment to a Vercel scope (production, preview, or development), and
sets DOTENV_PRIVATE_KEY[_<ENV>] as a remote env var. The variable is
removed before it is added, so repeated deploys never create duplicates.

Optionally triggers a deployment afterwards and prints its URL.

This is a single-target command: the first failure aborts.

Examples:
  envctl deploy --env production
  envctl deploy --env staging --deploy --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting deploy command")
		s, cleanup := startSpinner("Deploying key...")
		defer cleanup()

		dir, err := os.Getwd()
		if err != nil {
			return failf("failed to get working directory: %v", err)
		}

		if !vercel.Installed() {
			s.FinalMSG = ui.Error.Sprint("✗") + " The Vercel CLI is not installed\n" +
				ui.Info.Sprint("→") + " Install it: " + ui.Code.Sprint("npm install -g vercel")
			return errReported
		}

		store, err := keystore.Load(dir)
		if err != nil {
			return failf("failed to read key store: %v", err)
		}
		if !store.Exists || len(store.Keys) == 0 {
			s.FinalMSG = ui.Error.Sprint("✗") + " No keys available: " + ui.Path.Sprint(keystore.FileName) + " is missing or empty\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envctl init") + " or pull keys with " + ui.Code.Sprint("envctl bw pull")
			return errReported
		}

		var available []string
		for name := range store.Keys {
			if env, ok := keystore.EnvironmentFromKeyName(name); ok {
				available = append(available, env)
			}
		}

		choice, err := prompt.ChooseEnvironments(available, deployEnv, false, false)
		if err != nil {
			s.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
				ui.Info.Sprint("→") + " Environments with keys: " + strings.Join(available, ", ") +
				"; pick one with " + ui.Flag.Sprint("--env")
			return errReported
		}
		var env string
		if choice.NeedPrompt {
			s.Stop()
			index, err := prompt.Select("Which environment?", available)
			if err != nil {
				s.FinalMSG = ui.Warning.Sprint("⚠") + " Deploy cancelled."
				return nil
			}
			env = available[index]
			s.Restart()
		} else {
			env = choice.Selected[0]
		}

		value, ok := store.Lookup(env)
		if !ok {
			s.FinalMSG = ui.Error.Sprint("✗") + " " + ui.Path.Sprint(keystore.FileName) + " has no " + ui.Highlight.Sprint(keystore.KeyName(env)) + "\n" +
				ui.Info.Sprint("→") + " Pull it from your vault: " + ui.Code.Sprint("envctl bw pull --env "+env)
			return errReported
		}

		keyName := keystore.KeyName(env)
		scope := vercel.ScopeForEnvironment(env)
		Logger.Infof("Setting %s for scope %s", keyName, scope)

		// Remove-then-add keeps repeated deploys idempotent; removal is
		// silent because an absent variable is not a failure.
		existed := vercel.EnvExists(dir, keyName)
		vercel.EnvRm(dir, keyName, scope)
		if err := vercel.EnvAdd(dir, keyName, value, scope); err != nil {
			return failf("failed to add %s: %v", keyName, err)
		}

		trigger := deployTrigger
		if !trigger && !deployYes {
			s.Stop()
			trigger, err = prompt.Confirm("Key pushed. Trigger a deployment now?", false)
			if err != nil {
				return failf("failed to read response: %v", err)
			}
			s.Restart()
		}

		var b strings.Builder
		verb := "set"
		if existed {
			verb = "updated"
		}
		b.WriteString(ui.Success.Sprint("✓") + " " + ui.Highlight.Sprint(keyName) + " " + verb + " for the " + string(scope) + " scope")

		if trigger {
			s.Suffix = " Deploying..."
			output, err := vercel.Deploy(dir, scope == vercel.ScopeProduction)
			if err != nil {
				return failf("deployment failed: %v", err)
			}
			if url, ok := vercel.DeploymentURL(output); ok {
				b.WriteString("\n" + ui.Success.Sprint("✓") + " Deployed: " + ui.Path.Sprint(url))
			} else {
				b.WriteString("\n" + ui.Warning.Sprint("⚠") + " Deployment finished but no URL was found in the output")
			}
		}

		s.FinalMSG = b.String()
		return nil
	},
}
