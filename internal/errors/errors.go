// Package errors defines sentinel error values shared across envctl commands.
package errors

import "errors"

// Missing-precondition errors indicate a required tool or file is absent.
// They are reported with remediation instructions and never retried.
var (
	// ErrToolNotFound indicates a required external CLI is not installed.
	ErrToolNotFound = errors.New("required tool not found")

	// ErrNoEnvFiles indicates no environment files exist in the project.
	ErrNoEnvFiles = errors.New("no .env files found")

	// ErrEnvironmentNotFound indicates the requested environment has no env file.
	ErrEnvironmentNotFound = errors.New("environment not found")
)

// External-tool errors indicate a subprocess invocation failed. The tool's
// stderr text is wrapped so the caller can surface it verbatim.
var (
	// ErrToolFailed indicates an external CLI exited non-zero.
	ErrToolFailed = errors.New("external tool failed")
)

// Vault errors indicate issues talking to the Bitwarden CLI.
var (
	// ErrVaultLocked indicates the vault is locked or the session expired.
	ErrVaultLocked = errors.New("vault is locked")

	// ErrVaultUnauthenticated indicates the user is not logged in to the vault.
	ErrVaultUnauthenticated = errors.New("not logged in to vault")
)
