package fileserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const accessDeniedText = "Error: Access denied - Cannot access files outside working directory"

// RegisterFileTools adds the filesystem tools to the registry. Every tool is
// confined to the sandbox base directory, and every failure is reported as an
// isError text result so callers see one uniform outcome shape.
func RegisterFileTools(reg *Registry, sb *Sandbox) {
	reg.AddTool(NewTool(
		"list_files",
		"List files and directories in a given path.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": {
					Type:        "string",
					Description: "Directory path to list (relative to working directory)",
				},
			},
		},
	), listFilesHandler(sb))

	reg.AddTool(NewTool(
		"read_file",
		"Read the contents of a text file.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filepath": {
					Type:        "string",
					Description: "Path to the file to read (relative to working directory)",
				},
			},
			Required: []string{"filepath"},
		},
	), readFileHandler(sb))

	reg.AddTool(NewTool(
		"write_file",
		"Write content to a file.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filepath": {
					Type:        "string",
					Description: "Path to the file to write (relative to working directory)",
				},
				"content": {
					Type:        "string",
					Description: "Content to write to the file",
				},
			},
			Required: []string{"filepath", "content"},
		},
	), writeFileHandler(sb))

	reg.AddTool(NewTool(
		"create_directory",
		"Create a new directory.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": {
					Type:        "string",
					Description: "Directory path to create (relative to working directory)",
				},
			},
			Required: []string{"directory"},
		},
	), createDirectoryHandler(sb))

	reg.AddTool(NewTool(
		"get_working_directory",
		"Get information about the current working directory.",
		&jsonschema.Schema{Type: "object"},
	), workingDirectoryHandler(sb))
}

// fileEntry is one row in a list_files listing. Size is a pointer so
// directories serialize as null rather than 0.
type fileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size *int64 `json:"size"`
}

func listFilesHandler(sb *Sandbox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Directory string `json:"directory"`
		}
		if err := ParseArguments(req, &args); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if args.Directory == "" {
			args.Directory = "."
		}

		full, err := sb.Resolve(args.Directory)
		if err != nil {
			return ErrorResult(accessDeniedText), nil
		}

		info, err := os.Stat(full)
		if os.IsNotExist(err) {
			return ErrorResult(fmt.Sprintf("Error: Directory does not exist: %s", args.Directory)), nil
		}
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if !info.IsDir() {
			return ErrorResult(fmt.Sprintf("Error: Path is not a directory: %s", args.Directory)), nil
		}

		entries, err := os.ReadDir(full)
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		// os.ReadDir returns entries sorted by name, which is the order
		// the listing promises.
		files := make([]fileEntry, 0, len(entries))
		for _, entry := range entries {
			fe := fileEntry{Name: entry.Name(), Type: "file"}

			if stat, statErr := os.Stat(filepath.Join(full, entry.Name())); statErr == nil {
				if stat.IsDir() {
					fe.Type = "directory"
				} else if stat.Mode().IsRegular() {
					size := stat.Size()
					fe.Size = &size
				}
			}

			files = append(files, fe)
		}

		listing, err := json.MarshalIndent(files, "", "  ")
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return TextResult(fmt.Sprintf("Files in %s:\n%s", args.Directory, listing)), nil
	}
}

func readFileHandler(sb *Sandbox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Filepath string `json:"filepath"`
		}
		if err := ParseArguments(req, &args); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if args.Filepath == "" {
			return ErrorResult("Error: missing required argument: filepath"), nil
		}

		full, err := sb.Resolve(args.Filepath)
		if err != nil {
			return ErrorResult(accessDeniedText), nil
		}

		info, err := os.Stat(full)
		if os.IsNotExist(err) {
			return ErrorResult(fmt.Sprintf("Error: File does not exist: %s", args.Filepath)), nil
		}
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if !info.Mode().IsRegular() {
			return ErrorResult(fmt.Sprintf("Error: Path is not a file: %s", args.Filepath)), nil
		}

		data, err := os.ReadFile(full)
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if !utf8.Valid(data) {
			return TextResult(fmt.Sprintf(
				"File %s appears to be binary (size: %d bytes). Cannot display as text.",
				args.Filepath, len(data))), nil
		}

		return TextResult(fmt.Sprintf("Content of %s:\n\n%s", args.Filepath, data)), nil
	}
}

func writeFileHandler(sb *Sandbox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Filepath string `json:"filepath"`
			Content  string `json:"content"`
		}
		if err := ParseArguments(req, &args); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if args.Filepath == "" {
			return ErrorResult("Error: missing required argument: filepath"), nil
		}

		full, err := sb.Resolve(args.Filepath)
		if err != nil {
			return ErrorResult(accessDeniedText), nil
		}

		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if err := os.WriteFile(full, []byte(args.Content), 0o644); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return TextResult(fmt.Sprintf(
			"Successfully wrote %d characters to %s",
			utf8.RuneCountInString(args.Content), args.Filepath)), nil
	}
}

func createDirectoryHandler(sb *Sandbox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Directory string `json:"directory"`
		}
		if err := ParseArguments(req, &args); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if args.Directory == "" {
			return ErrorResult("Error: missing required argument: directory"), nil
		}

		full, err := sb.Resolve(args.Directory)
		if err != nil {
			return ErrorResult(accessDeniedText), nil
		}

		if err := os.MkdirAll(full, 0o755); err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return TextResult(fmt.Sprintf("Successfully created directory: %s", args.Directory)), nil
	}
}

func workingDirectoryHandler(sb *Sandbox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := os.ReadDir(sb.Base())
		if err != nil {
			return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		var fileCount, dirCount int
		for _, entry := range entries {
			stat, statErr := os.Stat(filepath.Join(sb.Base(), entry.Name()))
			if statErr != nil {
				continue
			}
			switch {
			case stat.IsDir():
				dirCount++
			case stat.Mode().IsRegular():
				fileCount++
			}
		}

		return TextResult(fmt.Sprintf(
			"Working Directory Information:\nPath: %s\nFiles: %d\nDirectories: %d\nTotal items: %d\n",
			sb.Base(), fileCount, dirCount, fileCount+dirCount)), nil
	}
}
