package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// runWrapper is the prefix added to run scripts so decrypted values are
// injected at runtime.
const runWrapper = "dotenvx run -- "

// patchableScripts are the manifest scripts that get the decrypt-and-run
// wrapper when present.
var patchableScripts = []string{"dev", "build", "start"}

// PatchScripts prefixes the project's run scripts with the dotenvx
// wrapper and rewrites the manifest. Already-wrapped scripts are left
// alone. Returns the names of the scripts that were changed.
func PatchScripts(dir string) ([]string, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestName, err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}

	manifest := k.Raw()
	scripts, ok := manifest["scripts"].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	var patched []string
	for _, name := range patchableScripts {
		command, ok := scripts[name].(string)
		if !ok || command == "" || strings.Contains(command, "dotenvx run") {
			continue
		}
		scripts[name] = runWrapper + command
		patched = append(patched, name)
	}
	sort.Strings(patched)

	if len(patched) == 0 {
		return nil, nil
	}

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ManifestName, err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ManifestName, err)
	}
	return patched, nil
}

// gitIgnoreLines keep encrypted env files in version control while the
// key store never is. Negations come first so the key-store patterns win.
var gitIgnoreLines = []string{
	"!.env",
	"!.env.*",
	".env.keys",
	".env.keys.*",
}

// vercelIgnoreLines keep the key store out of deployment uploads.
var vercelIgnoreLines = []string{
	".env.keys",
	".env.keys.*",
}

// PatchGitIgnore appends the env-file patterns to .gitignore, creating it
// if needed. Returns true when the file was changed.
func PatchGitIgnore(dir string) (bool, error) {
	return appendMissingLines(filepath.Join(dir, ".gitignore"), "# envctl: commit encrypted env files, never the key store", gitIgnoreLines)
}

// PatchVercelIgnore appends the key-store patterns to .vercelignore,
// creating it if needed. Returns true when the file was changed.
func PatchVercelIgnore(dir string) (bool, error) {
	return appendMissingLines(filepath.Join(dir, ".vercelignore"), "# envctl: keep the key store out of deployments", vercelIgnoreLines)
}

func appendMissingLines(path, comment string, lines []string) (bool, error) {
	existing := make(map[string]bool)
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, line := range lines {
		if !existing[line] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.WriteString(string(content))
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n" + comment + "\n")
	b.WriteString(strings.Join(missing, "\n") + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
