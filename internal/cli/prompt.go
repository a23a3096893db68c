package cli

import (
	"github.com/charmbracelet/huh"
)

// promptChooser asks the operator to pick a branch when a commit is
// reachable from more than one. The prompt blocks until answered.
type promptChooser struct{}

func (promptChooser) Choose(candidates []string) (string, error) {
	options := make([]huh.Option[string], 0, len(candidates))
	for _, c := range candidates {
		options = append(options, huh.NewOption(c, c))
	}

	var choice string
	err := huh.NewSelect[string]().
		Title("Multiple branches contain this commit").
		Description("Pick the branch to record for it").
		Options(options...).
		Value(&choice).
		Run()
	if err != nil {
		return "", err
	}
	return choice, nil
}
