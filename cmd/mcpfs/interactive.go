package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Line-oriented session against a filesystem server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, done, err := connect(ctx)
		if err != nil {
			return err
		}
		defer done()

		if info := client.ServerInfo(); info != nil {
			fmt.Println(titleStyle.Render("Connected to " + info.ServerInfo.Name))
		}
		fmt.Println(subtleStyle.Render("Type 'help' for commands, 'quit' to exit"))

		return repl(ctx, client)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func repl(ctx context.Context, client mcpclient.Client) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(promptStyle.Render("> "))

		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "quit", "exit":
			return nil

		case "help":
			printHelp()

		case "tools":
			printTools(ctx, client)

		case "pwd":
			printResult(client.CallToolText(ctx, "get_working_directory", nil))

		case "list":
			directory := "."
			if len(fields) > 1 {
				directory = fields[1]
			}
			printResult(client.CallToolText(ctx, "list_files", map[string]any{
				"directory": directory,
			}))

		case "read":
			if len(fields) < 2 {
				fmt.Println("Usage: read <filepath>")
				continue
			}
			printResult(client.CallToolText(ctx, "read_file", map[string]any{
				"filepath": fields[1],
			}))

		case "write":
			// Content is everything after the filepath, whitespace intact.
			parts := strings.SplitN(line, " ", 3)
			if len(parts) < 3 {
				fmt.Println("Usage: write <filepath> <content>")
				continue
			}
			printResult(client.CallToolText(ctx, "write_file", map[string]any{
				"filepath": parts[1],
				"content":  parts[2],
			}))

		case "mkdir":
			if len(fields) < 2 {
				fmt.Println("Usage: mkdir <directory>")
				continue
			}
			printResult(client.CallToolText(ctx, "create_directory", map[string]any{
				"directory": fields[1],
			}))

		default:
			fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", fields[0])
		}
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  list [directory]          - List files in directory (default: current)")
	fmt.Println("  read <filepath>           - Read a file")
	fmt.Println("  write <filepath> <content> - Write content to a file")
	fmt.Println("  mkdir <directory>         - Create directory")
	fmt.Println("  pwd                       - Show working directory")
	fmt.Println("  tools                     - Show available tools")
	fmt.Println("  quit                      - Exit")
}

func printTools(ctx context.Context, client mcpclient.Client) {
	tools := client.AvailableTools()
	if tools == nil {
		var err error
		if tools, err = client.ListTools(ctx); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			return
		}
	}

	for _, tool := range tools {
		desc := tool.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Printf("  %s: %s\n", toolNameStyle.Render(tool.Name), desc)
	}
}

func printResult(text string, err error) {
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return
	}

	fmt.Println(text)
}
