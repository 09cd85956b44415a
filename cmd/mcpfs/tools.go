package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools a server exposes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, done, err := connect(ctx)
		if err != nil {
			return err
		}
		defer done()

		tools, err := client.ListTools(ctx)
		if err != nil {
			return err
		}

		if info := client.ServerInfo(); info != nil {
			fmt.Println(titleStyle.Render(fmt.Sprintf("%s %s",
				info.ServerInfo.Name, info.ServerInfo.Version)))
		}

		for _, tool := range tools {
			fmt.Println(toolNameStyle.Render(tool.Name))
			if tool.Description != "" {
				fmt.Println("  " + subtleStyle.Render(tool.Description))
			}
		}

		fmt.Println(subtleStyle.Render(fmt.Sprintf("%d tools", len(tools))))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
