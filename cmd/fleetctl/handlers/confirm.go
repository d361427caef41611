package handlers

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

var (
	isInteractive = func() bool {
		return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
	}

	askConfirm = func(title string) (bool, error) {
		var ok bool
		err := huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&ok).
			Run()
		return ok, err
	}
)

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks before a destructive action. Non-interactive sessions and
// --yes proceed without asking.
func confirm(title string, yes bool) (bool, error) {
	if yes || !isInteractive() {
		return true, nil
	}
	ok, err := askConfirm(title)
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	if !ok {
		fmt.Fprintln(stdout, "Aborted.")
	}
	return ok, nil
}
