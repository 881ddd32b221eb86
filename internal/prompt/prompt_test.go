package prompt

import (
	"errors"
	"reflect"
	"testing"

	kerrors "github.com/envctl/envctl/internal/errors"
)

func TestChooseEnvironmentsExplicitEnv(t *testing.T) {
	choice, err := ChooseEnvironments([]string{"production", "staging"}, "staging", false, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if choice.NeedPrompt {
		t.Error("Explicit --env should not need a prompt")
	}
	if !reflect.DeepEqual(choice.Selected, []string{"staging"}) {
		t.Errorf("Selected = %v, want [staging]", choice.Selected)
	}
}

func TestChooseEnvironmentsUnknownEnv(t *testing.T) {
	_, err := ChooseEnvironments([]string{"production"}, "qa", false, false)
	if !errors.Is(err, kerrors.ErrEnvironmentNotFound) {
		t.Errorf("Expected ErrEnvironmentNotFound, got: %v", err)
	}
}

func TestChooseEnvironmentsAll(t *testing.T) {
	available := []string{"production", "staging", "development"}

	for _, name := range []string{"all", "yes"} {
		t.Run(name, func(t *testing.T) {
			choice, err := ChooseEnvironments(available, "", name == "all", name == "yes")
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if choice.NeedPrompt {
				t.Error("Flag should decide without a prompt")
			}
			if !reflect.DeepEqual(choice.Selected, available) {
				t.Errorf("Selected = %v, want %v", choice.Selected, available)
			}
		})
	}
}

func TestChooseEnvironmentsSingleCandidate(t *testing.T) {
	choice, err := ChooseEnvironments([]string{"production"}, "", false, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if choice.NeedPrompt || len(choice.Selected) != 1 {
		t.Errorf("Single candidate should be auto-selected, got %+v", choice)
	}
}

func TestChooseEnvironmentsNeedsPrompt(t *testing.T) {
	choice, err := ChooseEnvironments([]string{"production", "staging"}, "", false, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !choice.NeedPrompt {
		t.Error("Multiple candidates without flags should need a prompt")
	}
}

func TestChooseEnvironmentsEmpty(t *testing.T) {
	_, err := ChooseEnvironments(nil, "", true, false)
	if !errors.Is(err, kerrors.ErrNoEnvFiles) {
		t.Errorf("Expected ErrNoEnvFiles, got: %v", err)
	}
}

func TestChooseNewEnvironments(t *testing.T) {
	standard := []string{"development", "staging", "production"}

	choice, err := ChooseNewEnvironments(standard, []string{"production"}, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if choice.NeedPrompt {
		t.Error("--yes should decide without a prompt")
	}
	if !reflect.DeepEqual(choice.Selected, []string{"development", "staging"}) {
		t.Errorf("Selected = %v", choice.Selected)
	}
}

func TestChooseNewEnvironmentsAllExist(t *testing.T) {
	standard := []string{"development", "production"}
	choice, err := ChooseNewEnvironments(standard, standard, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if choice.NeedPrompt || len(choice.Selected) != 0 {
		t.Errorf("Nothing missing should decide empty, got %+v", choice)
	}
}

func TestChooseNewEnvironmentsPromptWhenInteractive(t *testing.T) {
	choice, err := ChooseNewEnvironments([]string{"staging"}, nil, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !choice.NeedPrompt {
		t.Error("Interactive mode should ask before creating files")
	}
}
