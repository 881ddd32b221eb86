// Package keystore reads and mutates the .env.keys file the encryption
// tool maintains. Parsing is lenient: lines that don't look like a private
// key assignment are preserved but otherwise ignored, so manual edits and
// comments survive round-trips.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/envctl/envctl/internal/scanner"
)

// FileName is the key-store file the encryption tool writes.
const FileName = ".env.keys"

// KeyPrefix is the common prefix of all private key names.
const KeyPrefix = "DOTENV_PRIVATE_KEY"

// keyLine matches one private-key assignment, optionally quoted.
var keyLine = regexp.MustCompile(`^\s*(DOTENV_PRIVATE_KEY(?:_[A-Z0-9_]+)?)\s*=\s*"?([^"\s]*)"?\s*$`)

// Store is the parsed key store for one project directory.
type Store struct {
	// Path is the key-store file path, whether or not it exists.
	Path string

	// Exists reports whether the file was present when loaded.
	Exists bool

	// Keys maps full key names (e.g. DOTENV_PRIVATE_KEY_PRODUCTION) to
	// their secret values.
	Keys map[string]string
}

// Load parses the key store in dir. An absent file is not an error: the
// returned store has Exists=false and an empty mapping.
func Load(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	store := &Store{Path: path, Keys: make(map[string]string)}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	store.Exists = true
	for _, line := range strings.Split(string(content), "\n") {
		if m := keyLine.FindStringSubmatch(line); m != nil && m[2] != "" {
			store.Keys[m[1]] = m[2]
		}
	}
	return store, nil
}

// KeyName returns the private key name for a logical environment name.
// The root environment maps to the bare DOTENV_PRIVATE_KEY.
func KeyName(env string) string {
	if env == scanner.RootEnvironment {
		return KeyPrefix
	}
	return KeyPrefix + "_" + strings.ToUpper(strings.ReplaceAll(env, "-", "_"))
}

// EnvironmentFromKeyName maps a private key name back to a display form
// of its environment name. KeyName collapses hyphens and underscores into
// the same key, so the returned name is not guaranteed to match the
// on-disk file name for environments containing underscores; compare
// KeyName values when matching keys against files. The second return is
// false when name is not a private key name.
func EnvironmentFromKeyName(name string) (string, bool) {
	if name == KeyPrefix {
		return scanner.RootEnvironment, true
	}
	if !strings.HasPrefix(name, KeyPrefix+"_") {
		return "", false
	}
	suffix := strings.TrimPrefix(name, KeyPrefix+"_")
	if suffix == "" {
		return "", false
	}
	return strings.ToLower(strings.ReplaceAll(suffix, "_", "-")), true
}

// Lookup returns the private key value for a logical environment name.
func (s *Store) Lookup(env string) (string, bool) {
	value, ok := s.Keys[KeyName(env)]
	return value, ok
}

// RemoveKey strips the exact assignment line for name from the file and
// rewrites it, preserving every other line. Removing a key that isn't
// present is a no-op.
func (s *Store) RemoveKey(name string) error {
	if !s.Exists {
		return nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	var kept []string
	for _, line := range strings.Split(string(content), "\n") {
		if m := keyLine.FindStringSubmatch(line); m != nil && m[1] == name {
			continue
		}
		kept = append(kept, line)
	}

	if err := os.WriteFile(s.Path, []byte(strings.Join(kept, "\n")), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	delete(s.Keys, name)
	return nil
}

// SetKey writes the assignment for name, replacing an existing line or
// appending a new one. The file is created if it does not exist.
func (s *Store) SetKey(name, value string) error {
	var lines []string
	if content, err := os.ReadFile(s.Path); err == nil {
		lines = strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	}

	assignment := fmt.Sprintf(`%s="%s"`, name, value)
	replaced := false
	for i, line := range lines {
		if m := keyLine.FindStringSubmatch(line); m != nil && m[1] == name {
			lines[i] = assignment
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, assignment)
	}

	if err := os.WriteFile(s.Path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	s.Exists = true
	s.Keys[name] = value
	return nil
}

// Backup copies the key store to a timestamped .bak file alongside it and
// returns the backup path. Backing up an absent store is a no-op.
func (s *Store) Backup() (string, error) {
	if !s.Exists {
		return "", nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	backupPath := fmt.Sprintf("%s.bak.%s", s.Path, time.Now().Format("20060102150405"))
	if err := os.WriteFile(backupPath, content, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", backupPath, err)
	}
	return backupPath, nil
}
