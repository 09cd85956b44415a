package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var callArgsJSON string

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke one tool and print its text result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		toolName := args[0]

		var arguments map[string]any
		if callArgsJSON != "" {
			if err := json.Unmarshal([]byte(callArgsJSON), &arguments); err != nil {
				return fmt.Errorf("parse --args: %w", err)
			}
		}

		client, done, err := connect(ctx)
		if err != nil {
			return err
		}
		defer done()

		text, err := client.CallToolText(ctx, toolName, arguments)
		if err != nil {
			return err
		}

		fmt.Println(text)

		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&callArgsJSON, "args", "", "tool arguments as a JSON object")
	rootCmd.AddCommand(callCmd)
}
