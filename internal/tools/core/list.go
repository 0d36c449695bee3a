package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"microagent/internal/logging"
	"microagent/internal/tools"
)

// ListDirectoryTool returns a read-only tool listing directory entries.
func ListDirectoryTool() *tools.Tool {
	return &tools.Tool{
		Name:        "list_directory",
		Description: "View the contents of directories",
		Schema: tools.ToolSchema{
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "Directory to list (default: current directory)",
					Default:     ".",
				},
			},
			Order: []string{"path"},
		},
		Decode: decodeListDirectory,
	}
}

// ListDirectoryArgs are the typed arguments of list_directory.
type ListDirectoryArgs struct {
	Path string
}

func decodeListDirectory(args map[string]any) (tools.Invocation, error) {
	path, err := tools.StringArg(args, "path", false)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = "."
	}
	return ListDirectoryArgs{Path: path}, nil
}

// Describe names the directory.
func (a ListDirectoryArgs) Describe() []string {
	return []string{"Listing directory: " + a.Path}
}

// Run lists entries sorted by name, each tagged File or Directory.
func (a ListDirectoryArgs) Run(ctx context.Context) tools.Result {
	logging.ToolsDebug("list_directory: path=%s", a.Path)

	entries, err := os.ReadDir(a.Path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return tools.Errorf("Error: Directory '%s' not found.", a.Path)
		case errors.Is(err, fs.ErrPermission):
			return tools.Errorf("Error: Permission denied to access '%s'.", a.Path)
		default:
			return tools.Errorf("Error listing directory '%s': %v", a.Path, err)
		}
	}

	if len(entries) == 0 {
		return tools.OK(fmt.Sprintf("Directory '%s' is empty.", a.Path))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Contents of directory '%s':\n", a.Path)
	for _, entry := range entries {
		kind := "File"
		if isDir(a.Path, entry) {
			kind = "Directory"
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", entry.Name(), kind)
	}

	logging.Tools("list_directory completed: %s (%d entries)", a.Path, len(entries))
	return tools.OK(strings.TrimSpace(sb.String()))
}

// isDir follows symlinks so a link to a directory is listed as one.
func isDir(dir string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}
