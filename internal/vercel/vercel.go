// Package vercel is a client for the Vercel CLI. envctl never calls the
// platform API directly; environment variables and deployments go through
// `vercel env` and `vercel deploy` subprocesses.
package vercel

import (
	"regexp"
	"strings"

	"github.com/envctl/envctl/internal/execx"
	"github.com/envctl/envctl/internal/scanner"
)

// Scope is the platform's classification of where an env var applies.
type Scope string

const (
	ScopeProduction  Scope = "production"
	ScopePreview     Scope = "preview"
	ScopeDevelopment Scope = "development"
)

// deploymentURL extracts the deployment address from `vercel deploy`
// output. Kept as a single named pattern so format drift is caught here.
var deploymentURL = regexp.MustCompile(`https://[A-Za-z0-9][A-Za-z0-9.-]*\.vercel\.app`)

// ScopeForEnvironment maps a logical environment name to a deployment
// scope: production maps to production, development and the root env file
// map to development, everything else (staging, preview, ...) to preview.
func ScopeForEnvironment(env string) Scope {
	switch env {
	case "production", "prod":
		return ScopeProduction
	case "development", "dev", scanner.RootEnvironment:
		return ScopeDevelopment
	default:
		return ScopePreview
	}
}

// Installed reports whether the vercel CLI is on PATH.
func Installed() bool {
	return execx.Which("vercel")
}

// EnvLs returns the raw `vercel env ls` output for the project in dir.
func EnvLs(dir string) (string, error) {
	res, err := execx.Run(dir, "vercel", "env", "ls")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// EnvExists reports whether the remote listing carries a variable with
// the exact name. Listing failures degrade to false.
func EnvExists(dir, key string) bool {
	out, err := EnvLs(dir)
	if err != nil {
		return false
	}
	return envListed(out, key)
}

// envListed scans table output for a row whose first column is key.
func envListed(output, key string) bool {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == key {
			return true
		}
	}
	return false
}

// EnvRm removes a remote env var for the scope. Removal is silent:
// removing a variable that doesn't exist is not an error, which is what
// makes the remove-then-add deploy idempotent.
func EnvRm(dir, key string, scope Scope) {
	execx.RunSilent(dir, "vercel", "env", "rm", key, string(scope), "--yes")
}

// EnvAdd adds a remote env var for the scope, passing the value on stdin
// so it never appears in the process table.
func EnvAdd(dir, key, value string, scope Scope) error {
	_, err := execx.RunStdin(dir, value, "vercel", "env", "add", key, string(scope))
	return err
}

// Deploy triggers a deployment and returns the CLI's combined output.
// prod maps to `vercel deploy --prod`.
func Deploy(dir string, prod bool) (string, error) {
	args := []string{"deploy", "--yes"}
	if prod {
		args = append(args, "--prod")
	}
	res, err := execx.Run(dir, "vercel", args...)
	if err != nil {
		return "", err
	}
	// The CLI prints the deployment URL on stderr in some versions.
	return res.Stdout + res.Stderr, nil
}

// DeploymentURL extracts the deployment URL from deploy output.
func DeploymentURL(output string) (string, bool) {
	match := deploymentURL.FindString(output)
	return strings.TrimSpace(match), match != ""
}
