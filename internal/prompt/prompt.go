// Package prompt separates selection decisions from terminal I/O.
//
// The Choose* functions are pure: given scanned state and command flags
// they either decide the selection outright or report that the user must
// be asked. The terminal adapters (Confirm, Select, PickEach) do the
// asking. Command handlers call the decision function first and only
// reach for an adapter when it says so, which keeps the decision logic
// unit-testable without a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/envctl/envctl/internal/errors"

	"github.com/manifoldco/promptui"
)

// Choice is the outcome of a pure selection decision.
type Choice struct {
	// Selected holds the decided subset when NeedPrompt is false.
	Selected []string

	// NeedPrompt reports that flags alone could not decide and the
	// caller must ask the user.
	NeedPrompt bool
}

// ChooseEnvironments decides which of the available environments a
// command should act on. An explicit --env wins; --all or --yes selects
// everything; otherwise the user must be prompted.
func ChooseEnvironments(available []string, envFlag string, all, yes bool) (Choice, error) {
	if len(available) == 0 {
		return Choice{}, kerrors.ErrNoEnvFiles
	}

	if envFlag != "" {
		for _, env := range available {
			if env == envFlag {
				return Choice{Selected: []string{envFlag}}, nil
			}
		}
		return Choice{}, fmt.Errorf("%w: %s", kerrors.ErrEnvironmentNotFound, envFlag)
	}

	if all || yes {
		return Choice{Selected: available}, nil
	}

	if len(available) == 1 {
		return Choice{Selected: available}, nil
	}

	return Choice{NeedPrompt: true}, nil
}

// ChooseNewEnvironments decides which of the standard environments init
// should offer to create, excluding ones that already have a file.
func ChooseNewEnvironments(standard, existing []string, yes bool) (Choice, error) {
	have := make(map[string]bool)
	for _, env := range existing {
		have[env] = true
	}

	var missing []string
	for _, env := range standard {
		if !have[env] {
			missing = append(missing, env)
		}
	}
	if len(missing) == 0 {
		return Choice{}, nil
	}
	if yes {
		return Choice{Selected: missing}, nil
	}
	return Choice{Selected: missing, NeedPrompt: true}, nil
}

// Confirm asks a y/N question on stdin and returns the answer.
// def is returned on a bare enter.
func Confirm(question string, def bool) (bool, error) {
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Printf("%s %s: ", question, suffix)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response == "" {
		return def, nil
	}
	return response == "y" || response == "yes", nil
}

// Select presents a navigable menu of items and returns the chosen index.
func Select(label string, items []string) (int, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	index, _, err := p.Run()
	if err != nil {
		return -1, err
	}
	return index, nil
}

// PickEach asks one y/N question per item and returns the accepted ones.
func PickEach(format string, items []string, def bool) ([]string, error) {
	var picked []string
	for _, item := range items {
		ok, err := Confirm(fmt.Sprintf(format, item), def)
		if err != nil {
			return nil, err
		}
		if ok {
			picked = append(picked, item)
		}
	}
	return picked, nil
}
