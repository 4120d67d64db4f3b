package tui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/huh"
)

var (
	mockMu  sync.Mutex
	answers []string
	mocked  bool
)

// MockPrompts makes the next prompts return the given answers in order
// instead of reading the terminal. Confirm treats "y" and "yes" as true.
func MockPrompts(values ...string) {
	mockMu.Lock()
	defer mockMu.Unlock()
	answers = append([]string(nil), values...)
	mocked = true
}

func ClearMock() {
	mockMu.Lock()
	defer mockMu.Unlock()
	answers = nil
	mocked = false
}

// Mocked reports whether prompts are answered by MockPrompts.
func Mocked() bool {
	mockMu.Lock()
	defer mockMu.Unlock()
	return mocked
}

func nextMock() (string, bool, error) {
	mockMu.Lock()
	defer mockMu.Unlock()
	if !mocked {
		return "", false, nil
	}
	if len(answers) == 0 {
		return "", true, fmt.Errorf("prompt: no mocked answer left")
	}
	v := answers[0]
	answers = answers[1:]
	return v, true, nil
}

func PlaintextInput(title string) (string, error) {
	return input(title, huh.EchoModeNormal)
}

// HiddenInput prompts without echoing what is typed.
func HiddenInput(title string) (string, error) {
	return input(title, huh.EchoModePassword)
}

func input(title string, mode huh.EchoMode) (string, error) {
	if v, ok, err := nextMock(); ok {
		return v, err
	}

	var result string
	err := huh.NewInput().
		Title(title).
		EchoMode(mode).
		Value(&result).
		Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return result, nil
}

func Confirm(title string) (bool, error) {
	if v, ok, err := nextMock(); ok {
		return v == "y" || v == "yes", err
	}

	var result bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&result).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return result, nil
}
