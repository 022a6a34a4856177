package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Menu options, in the order they are presented.
const (
	menuStart    = "Start a new conversation"
	menuContinue = "Continue the conversation"
	menuHistory  = "View message history"
	menuClear    = "Clear the database"
	menuExit     = "Exit"
)

func promptMenu() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{menuStart, menuContinue, menuHistory, menuClear, menuExit},
		Help:    "Every turn records one message and one interaction in the local database.",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

func promptInitialMessage() (string, error) {
	var message string
	prompt := &survey.Input{
		Message: "Enter an initial message to start the conversation:",
		Help:    "The message is attributed to the first participant in the rotation.",
	}

	err := survey.AskOne(prompt, &message, survey.WithValidator(func(val interface{}) error {
		str, ok := val.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return fmt.Errorf("initial message cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(message), nil
}

func promptConfirmClear() (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Remove every recorded message and interaction?",
		Default: false,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}
