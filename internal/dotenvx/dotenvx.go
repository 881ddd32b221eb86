// Package dotenvx is a client for the dotenvx CLI, which owns all
// encryption and decryption of env files. envctl never touches
// ciphertext itself; it marshals arguments into dotenvx invocations and
// parses the tool's text output.
package dotenvx

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/envctl/envctl/internal/execx"
)

// Package is the npm package providing the CLI.
const Package = "@dotenvx/dotenvx"

// exportLine matches one line of `dotenvx get --format shell` output:
// an optionally `export`-prefixed assignment with an optionally quoted
// value. Kept as a single named pattern so format drift is caught here.
var exportLine = regexp.MustCompile(`^(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)=(?:"((?:[^"\\]|\\.)*)"|'([^']*)'|(.*))$`)

// Variable is one decrypted KEY=value pair. Order is preserved so a
// rewritten cleartext file matches the original layout.
type Variable struct {
	Name  string
	Value string
}

// Installed reports whether the dotenvx CLI can be invoked in dir,
// either from the project's node_modules or from PATH.
func Installed(dir string) bool {
	if _, err := os.Stat(localBin(dir)); err == nil {
		return true
	}
	return execx.Which("dotenvx")
}

// Encrypt encrypts the given env file in place.
func Encrypt(dir, file string) error {
	_, err := run(dir, "encrypt", "-f", file)
	return err
}

// Set writes one key/value into the given env file. With encrypt=false
// the value is stored as cleartext (dotenvx --plain).
func Set(dir, file, key, value string, encrypt bool) error {
	args := []string{"set", key, value, "-f", file}
	if !encrypt {
		args = append(args, "--plain")
	}
	_, err := run(dir, args...)
	return err
}

// Get decrypts the given env file and returns its variables in file
// order, using `get --format shell`.
func Get(dir, file string) ([]Variable, error) {
	res, err := run(dir, "get", "-f", file, "--format", "shell")
	if err != nil {
		return nil, err
	}
	return ParseShellOutput(res.Stdout), nil
}

// ParseShellOutput extracts variables from shell-format dotenvx output.
// Lines that don't look like assignments are skipped silently.
func ParseShellOutput(output string) []Variable {
	var vars []Variable
	for _, line := range strings.Split(output, "\n") {
		m := exportLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		value := m[2]
		if value == "" && m[3] != "" {
			value = m[3]
		}
		if value == "" && m[4] != "" {
			value = m[4]
		}
		vars = append(vars, Variable{Name: m[1], Value: value})
	}
	return vars
}

// Render formats variables back into env-file syntax, one quoted
// assignment per line.
func Render(vars []Variable) string {
	var b strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&b, "%s=\"%s\"\n", v.Name, v.Value)
	}
	return b.String()
}

// InstallLocally runs `npm install <Package> --save` interactively so
// the user sees npm's own progress output.
func InstallLocally(dir string) error {
	code, err := execx.RunInteractive(dir, "npm", "install", Package, "--save")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("npm install %s exited with code %d", Package, code)
	}
	return nil
}

// run invokes the dotenvx CLI, preferring the project-local binary.
func run(dir string, args ...string) (execx.Result, error) {
	bin := "dotenvx"
	if local := localBin(dir); fileExists(local) {
		bin = local
	}
	return execx.Run(dir, bin, args...)
}

func localBin(dir string) string {
	return filepath.Join(dir, "node_modules", ".bin", "dotenvx")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
