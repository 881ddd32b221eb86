package execx

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	kerrors "github.com/envctl/envctl/internal/errors"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}
}

func TestWhich(t *testing.T) {
	skipOnWindows(t)

	if !Which("sh") {
		t.Error("Expected sh to be on PATH")
	}
	if Which("definitely-not-a-real-tool-xyz") {
		t.Error("Expected nonexistent tool to be absent")
	}
}

func TestRunCapturesStdout(t *testing.T) {
	skipOnWindows(t)

	res, err := Run("", "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Expected stdout %q, got %q", "hello", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", res.ExitCode)
	}
}

func TestRunNonZeroExitSurfacesStderr(t *testing.T) {
	skipOnWindows(t)

	res, err := Run("", "sh", "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("Expected an error for non-zero exit")
	}
	if !errors.Is(err, kerrors.ErrToolFailed) {
		t.Errorf("Expected ErrToolFailed, got: %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Expected error to carry stderr text, got: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", res.ExitCode)
	}
}

func TestRunMissingTool(t *testing.T) {
	_, err := Run("", "definitely-not-a-real-tool-xyz")
	if !errors.Is(err, kerrors.ErrToolNotFound) {
		t.Errorf("Expected ErrToolNotFound, got: %v", err)
	}
}

func TestRunSilentAbsorbsFailure(t *testing.T) {
	skipOnWindows(t)

	res := RunSilent("", "sh", "-c", "echo noise >&2; exit 1")
	if res.Stdout != "" || res.Stderr != "" {
		t.Errorf("Expected empty result on failure, got: %+v", res)
	}

	res = RunSilent("", "sh", "-c", "echo fine")
	if strings.TrimSpace(res.Stdout) != "fine" {
		t.Errorf("Expected stdout on success, got: %+v", res)
	}
}

func TestRunStdin(t *testing.T) {
	skipOnWindows(t)

	res, err := RunStdin("", "secret-value\n", "sh", "-c", "cat")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "secret-value" {
		t.Errorf("Expected stdin echoed back, got %q", res.Stdout)
	}
}

func TestRunInDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	res, err := Run(dir, "pwd")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(res.Stdout, dir) && !strings.HasPrefix(strings.TrimSpace(res.Stdout), "/") {
		t.Errorf("Expected pwd output, got %q", res.Stdout)
	}
}
