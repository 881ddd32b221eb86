package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
}

func TestDetectMissingManifest(t *testing.T) {
	tmpDir := t.TempDir()
	desc := Detect(tmpDir)
	if desc.Kind != KindUnknown {
		t.Errorf("Expected KindUnknown, got %s", desc.Kind)
	}
	if desc.Name != filepath.Base(tmpDir) {
		t.Errorf("Expected directory-name fallback, got %q", desc.Name)
	}
}

func TestDetectUnparsableManifest(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "{not json")
	if desc := Detect(tmpDir); desc.Kind != KindUnknown {
		t.Errorf("Expected KindUnknown, got %s", desc.Kind)
	}
}

func TestDetectFrameworks(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     Kind
		version  string
	}{
		{
			"next",
			`{"name":"my-app","dependencies":{"next":"^14.1.0","react":"^18.0.0"}}`,
			KindNext, "^14.1.0",
		},
		{
			"plain vite",
			`{"name":"my-app","devDependencies":{"vite":"^5.0.0"}}`,
			KindVite, "^5.0.0",
		},
		{
			"vite react",
			`{"name":"my-app","devDependencies":{"vite":"^5.0.0","@vitejs/plugin-react":"^4.2.0"}}`,
			KindViteReact, "^5.0.0",
		},
		{
			"vite react swc",
			`{"name":"my-app","devDependencies":{"vite":"^5.0.0","@vitejs/plugin-react-swc":"^3.5.0"}}`,
			KindViteReact, "^5.0.0",
		},
		{
			"vite vue",
			`{"name":"my-app","devDependencies":{"vite":"^5.0.0","@vitejs/plugin-vue":"^5.0.0"}}`,
			KindViteVue, "^5.0.0",
		},
		{
			"vite svelte",
			`{"name":"my-app","devDependencies":{"vite":"^5.0.0","@sveltejs/vite-plugin-svelte":"^3.0.0"}}`,
			KindViteSvelte, "^5.0.0",
		},
		{
			"no framework",
			`{"name":"my-app","dependencies":{"express":"^4.18.0"}}`,
			KindUnknown, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeManifest(t, tmpDir, tt.manifest)
			desc := Detect(tmpDir)
			if desc.Kind != tt.want {
				t.Errorf("Detect() kind = %s, want %s", desc.Kind, tt.want)
			}
			if desc.Version != tt.version {
				t.Errorf("Detect() version = %q, want %q", desc.Version, tt.version)
			}
			if desc.Name != "my-app" {
				t.Errorf("Detect() name = %q, want my-app", desc.Name)
			}
		})
	}
}

func TestHasDependency(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, `{"dependencies":{"@dotenvx/dotenvx":"^1.6.0"},"devDependencies":{"vite":"^5.0.0"}}`)

	if !HasDependency(tmpDir, "@dotenvx/dotenvx") {
		t.Error("Expected @dotenvx/dotenvx in dependencies")
	}
	if !HasDependency(tmpDir, "vite") {
		t.Error("Expected vite in devDependencies")
	}
	if HasDependency(tmpDir, "next") {
		t.Error("Did not expect next")
	}
}

func TestKindDisplay(t *testing.T) {
	if KindNext.Display() != "Next.js" {
		t.Errorf("KindNext.Display() = %q", KindNext.Display())
	}
	if KindUnknown.Display() != "unknown" {
		t.Errorf("KindUnknown.Display() = %q", KindUnknown.Display())
	}
}
