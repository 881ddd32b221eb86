package vercel

import (
	"testing"

	"github.com/envctl/envctl/internal/scanner"
)

func TestScopeForEnvironment(t *testing.T) {
	tests := []struct {
		env  string
		want Scope
	}{
		{"production", ScopeProduction},
		{"prod", ScopeProduction},
		{"development", ScopeDevelopment},
		{"dev", ScopeDevelopment},
		{scanner.RootEnvironment, ScopeDevelopment},
		{"staging", ScopePreview},
		{"preview", ScopePreview},
		{"qa", ScopePreview},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := ScopeForEnvironment(tt.env); got != tt.want {
				t.Errorf("ScopeForEnvironment(%q) = %s, want %s", tt.env, got, tt.want)
			}
		})
	}
}

// sampleDeployOutput mirrors real `vercel deploy` output.
const sampleDeployOutput = `Vercel CLI 33.5.1
Retrieving project…
Deploying acme/my-app
Uploading [====================] (12.4KB/12.4KB)
Inspect: https://vercel.com/acme/my-app/4Qf8Kb [2s]
Production: https://my-app-git-main-acme.vercel.app [2s]
`

func TestDeploymentURL(t *testing.T) {
	url, ok := DeploymentURL(sampleDeployOutput)
	if !ok {
		t.Fatal("Expected a deployment URL")
	}
	want := "https://my-app-git-main-acme.vercel.app"
	if url != want {
		t.Errorf("DeploymentURL() = %q, want %q", url, want)
	}
}

// sampleEnvLsOutput mirrors real `vercel env ls` output.
const sampleEnvLsOutput = ` name                            value               environments        created
 DOTENV_PRIVATE_KEY_PRODUCTION  Encrypted           Production          2d ago
 DATABASE_URL                   Encrypted           Production          30d ago
`

func TestEnvListed(t *testing.T) {
	if !envListed(sampleEnvLsOutput, "DOTENV_PRIVATE_KEY_PRODUCTION") {
		t.Error("Expected DOTENV_PRIVATE_KEY_PRODUCTION to be listed")
	}
	// A listed name must match the whole column, not a prefix of it.
	if envListed(sampleEnvLsOutput, "DOTENV_PRIVATE_KEY") {
		t.Error("Prefix of a listed name should not match")
	}
	if envListed("", "DATABASE_URL") {
		t.Error("Empty output should list nothing")
	}
}

func TestDeploymentURLAbsent(t *testing.T) {
	if url, ok := DeploymentURL("Error: something broke\n"); ok {
		t.Errorf("Expected no URL, got %q", url)
	}
}
