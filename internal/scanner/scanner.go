// Package scanner discovers environment files in a project directory and
// classifies them. Scanning is best-effort: unreadable directories and
// files degrade to empty results rather than failing the caller.
package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// FilePrefix is the common prefix of all environment files.
	FilePrefix = ".env"

	// RootEnvironment is the reserved environment name for the bare .env file.
	RootEnvironment = "root"

	// KeyStoreName is the file holding private keys, excluded from scans.
	KeyStoreName = ".env.keys"

	// ReservedVarPrefix marks variables owned by the encryption tool.
	ReservedVarPrefix = "DOTENV_"
)

// Markers the encryption tool writes into encrypted files.
const (
	publicKeyMarker      = "DOTENV_PUBLIC_KEY"
	encryptedValueMarker = "encrypted:"
)

// variableLine matches one KEY=value assignment at the start of a line.
// Names must start with an uppercase letter; lowercase assignments and
// comments are ignored.
var variableLine = regexp.MustCompile(`(?m)^([A-Z][A-Z0-9_]*)\s*=`)

// EnvFile describes one discovered environment file.
type EnvFile struct {
	// Name is the file name, e.g. ".env.production".
	Name string

	// Environment is the logical environment name, e.g. "production".
	// The bare .env file maps to RootEnvironment.
	Environment string

	// Path is the absolute file path.
	Path string

	// Encrypted reports whether the file carries encryption markers.
	Encrypted bool

	// Variables are the extracted variable names, reserved names excluded.
	Variables []string
}

// Scan walks dir and returns every environment file it can read, sorted by
// file name. Key-store files, backups, and example files are excluded.
// Errors reading the directory or individual files are non-fatal and
// degrade to "no files found".
func Scan(dir string) []EnvFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []EnvFile
	for _, entry := range entries {
		if entry.IsDir() || !IsEnvFileName(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		env, _ := EnvironmentFromFileName(entry.Name())
		files = append(files, EnvFile{
			Name:        entry.Name(),
			Environment: env,
			Path:        path,
			Encrypted:   IsEncrypted(string(content)),
			Variables:   ExtractVariables(string(content)),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files
}

// Resolve expands user-provided file paths or globs relative to dir into
// matching environment files. Unlike Scan, an explicit argument that
// matches nothing is an error left to the caller via the empty result.
func Resolve(patterns []string, dir string) []EnvFile {
	seen := make(map[string]bool)
	var files []EnvFile

	for _, pattern := range patterns {
		absPattern := pattern
		if !filepath.IsAbs(pattern) {
			absPattern = filepath.Join(dir, pattern)
		}

		matches, err := doublestar.FilepathGlob(absPattern)
		if err != nil {
			continue
		}

		for _, m := range matches {
			if seen[m] || !IsEnvFileName(filepath.Base(m)) {
				continue
			}
			content, err := os.ReadFile(m)
			if err != nil {
				continue
			}
			seen[m] = true
			env, _ := EnvironmentFromFileName(filepath.Base(m))
			files = append(files, EnvFile{
				Name:        filepath.Base(m),
				Environment: env,
				Path:        m,
				Encrypted:   IsEncrypted(string(content)),
				Variables:   ExtractVariables(string(content)),
			})
		}
	}

	return files
}

// IsEnvFileName reports whether name is a scannable environment file:
// ".env" or ".env.<name>", excluding the key store, backups, temp files,
// and example/sample files. Backup matching is anchored to a ".bak"
// suffix or segment so environment names containing "bak" still scan.
func IsEnvFileName(name string) bool {
	if name != FilePrefix && !strings.HasPrefix(name, FilePrefix+".") {
		return false
	}
	if name == KeyStoreName || strings.HasPrefix(name, KeyStoreName+".") {
		return false
	}
	if strings.HasSuffix(name, ".bak") || strings.Contains(name, ".bak.") {
		return false
	}
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	if strings.HasSuffix(name, ".example") || strings.HasSuffix(name, ".sample") {
		return false
	}
	return true
}

// IsEncrypted reports whether file content carries either encryption
// marker: a public-key declaration or an "encrypted:" value wrapper.
func IsEncrypted(content string) bool {
	return strings.Contains(content, publicKeyMarker) ||
		strings.Contains(content, encryptedValueMarker)
}

// ExtractVariables returns the variable names assigned in content,
// excluding names with the reserved DOTENV_ prefix.
func ExtractVariables(content string) []string {
	var vars []string
	for _, m := range variableLine.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if strings.HasPrefix(name, ReservedVarPrefix) {
			continue
		}
		vars = append(vars, name)
	}
	return vars
}

// EnvironmentFromFileName derives the logical environment name from an
// environment file name. The bare .env file maps to RootEnvironment.
// The second return is false when the name is not an environment file.
func EnvironmentFromFileName(name string) (string, bool) {
	if !IsEnvFileName(name) {
		return "", false
	}
	if name == FilePrefix {
		return RootEnvironment, true
	}
	return strings.TrimPrefix(name, FilePrefix+"."), true
}

// FileNameForEnvironment is the inverse of EnvironmentFromFileName.
func FileNameForEnvironment(env string) string {
	if env == RootEnvironment {
		return FilePrefix
	}
	return FilePrefix + "." + env
}
