package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	logger "github.com/envctl/envctl/internal/logging"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}
}

// installFakeTool puts an executable shell script named name on PATH that
// appends its arguments to the returned log file and then runs body.
func installFakeTool(t *testing.T, name, body string) string {
	t.Helper()
	binDir := t.TempDir()
	logPath := filepath.Join(binDir, name+".log")
	script := "#!/bin/sh\necho \"$@\" >> " + logPath + "\n" + body + "\nexit 0\n"
	if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0755); err != nil {
		t.Fatalf("Failed to install fake %s: %v", name, err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return logPath
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestDeployTwiceRemovesBeforeAdding(t *testing.T) {
	skipWithoutShell(t)
	logPath := installFakeTool(t, "vercel", "")

	projDir := t.TempDir()
	writeFile(t, filepath.Join(projDir, ".env.keys"), `DOTENV_PRIVATE_KEY_PRODUCTION="abc"`+"\n")
	chdir(t, projDir)

	SetLogger(logger.Logger{})
	t.Cleanup(resetDeployCommandState)
	deployEnv = "production"
	deployYes = true

	for i := 0; i < 2; i++ {
		if err := deployCmd.RunE(deployCmd, nil); err != nil {
			t.Fatalf("Deploy run %d failed: %v", i+1, err)
		}
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read invocation log: %v", err)
	}
	var rms, adds []int
	for i, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "env rm DOTENV_PRIVATE_KEY_PRODUCTION production") {
			rms = append(rms, i)
		}
		if strings.HasPrefix(line, "env add DOTENV_PRIVATE_KEY_PRODUCTION production") {
			adds = append(adds, i)
		}
	}
	if len(rms) != 2 || len(adds) != 2 {
		t.Fatalf("Expected 2 removes and 2 adds, got %d and %d:\n%s", len(rms), len(adds), data)
	}
	for i := range adds {
		if rms[i] > adds[i] {
			t.Errorf("Run %d added before removing:\n%s", i+1, data)
		}
	}
}
