package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestPatchScripts(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, `{
  "name": "my-app",
  "scripts": {
    "dev": "next dev",
    "build": "next build",
    "start": "next start",
    "lint": "eslint ."
  },
  "dependencies": {"next": "^14.1.0"}
}`)

	patched, err := PatchScripts(tmpDir)
	if err != nil {
		t.Fatalf("PatchScripts failed: %v", err)
	}
	want := []string{"build", "dev", "start"}
	if !reflect.DeepEqual(patched, want) {
		t.Errorf("PatchScripts() = %v, want %v", patched, want)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ManifestName))
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	var manifest struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("Rewritten manifest is not valid JSON: %v", err)
	}
	if manifest.Scripts["dev"] != "dotenvx run -- next dev" {
		t.Errorf("dev script = %q", manifest.Scripts["dev"])
	}
	if manifest.Scripts["lint"] != "eslint ." {
		t.Errorf("lint script should be untouched, got %q", manifest.Scripts["lint"])
	}
	// Unrelated keys must survive the rewrite.
	if manifest.Name != "my-app" {
		t.Errorf("name lost in rewrite: %q", manifest.Name)
	}
}

func TestPatchScriptsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, `{"scripts":{"dev":"dotenvx run -- next dev"}}`)

	patched, err := PatchScripts(tmpDir)
	if err != nil {
		t.Fatalf("PatchScripts failed: %v", err)
	}
	if len(patched) != 0 {
		t.Errorf("Expected no scripts patched, got %v", patched)
	}
}

func TestPatchScriptsNoScripts(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, `{"name":"bare"}`)

	patched, err := PatchScripts(tmpDir)
	if err != nil {
		t.Fatalf("PatchScripts failed: %v", err)
	}
	if patched != nil {
		t.Errorf("Expected nil, got %v", patched)
	}
}

func TestPatchGitIgnore(t *testing.T) {
	tmpDir := t.TempDir()
	gitignore := filepath.Join(tmpDir, ".gitignore")
	if err := os.WriteFile(gitignore, []byte("node_modules\n.env\n"), 0644); err != nil {
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	changed, err := PatchGitIgnore(tmpDir)
	if err != nil {
		t.Fatalf("PatchGitIgnore failed: %v", err)
	}
	if !changed {
		t.Error("Expected .gitignore to change")
	}

	content, _ := os.ReadFile(gitignore)
	text := string(content)
	for _, line := range []string{"!.env", "!.env.*", ".env.keys", ".env.keys.*", "node_modules"} {
		if !strings.Contains(text, line) {
			t.Errorf(".gitignore missing %q:\n%s", line, text)
		}
	}
	// The key-store exclusion must come after the negations so it wins.
	if strings.Index(text, "!.env.*") > strings.Index(text, ".env.keys\n") {
		t.Errorf("key-store pattern should follow negations:\n%s", text)
	}

	// Second run is a no-op.
	changed, err = PatchGitIgnore(tmpDir)
	if err != nil {
		t.Fatalf("PatchGitIgnore failed: %v", err)
	}
	if changed {
		t.Error("Expected second patch to be a no-op")
	}
}

func TestPatchVercelIgnoreCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	changed, err := PatchVercelIgnore(tmpDir)
	if err != nil {
		t.Fatalf("PatchVercelIgnore failed: %v", err)
	}
	if !changed {
		t.Error("Expected .vercelignore to be created")
	}
	content, err := os.ReadFile(filepath.Join(tmpDir, ".vercelignore"))
	if err != nil {
		t.Fatalf("Failed to read .vercelignore: %v", err)
	}
	if !strings.Contains(string(content), ".env.keys") {
		t.Errorf(".vercelignore missing key-store pattern:\n%s", content)
	}
}
