package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("partsbin: prompt aborted")

// prompter abstracts the terminal so the interactive flow can be tested
// without one.
type prompter interface {
	Select(ctx context.Context, message string, options []string) (int, error)
}

type surveyPrompter struct {
	pageSize int
}

func (p surveyPrompter) Select(ctx context.Context, message string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(options) == 0 {
		return 0, errors.New("partsbin: nothing to choose from")
	}

	var out string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if p.pageSize > 0 {
		prompt.PageSize = p.pageSize
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(options, out), nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
