package main

import (
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [text | -]",
	Short: "Check text against input rules without loading a model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		validated, err := sentiment.NewTextValidator().Validate(text)
		if err != nil {
			return err
		}
		return newFormatter(cmd).WriteValidation(validated)
	},
}
