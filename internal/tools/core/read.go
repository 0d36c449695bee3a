package core

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"

	"microagent/internal/logging"
	"microagent/internal/tools"
)

// ReadFileContentTool returns a read-only tool for reading file contents.
func ReadFileContentTool() *tools.Tool {
	return &tools.Tool{
		Name:        "read_file_content",
		Description: "Read the content of files",
		Schema: tools.ToolSchema{
			Required: []string{"path"},
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "The file path to read",
				},
			},
			Order: []string{"path"},
		},
		Decode: decodeReadFile,
	}
}

// ReadFileArgs are the typed arguments of read_file_content.
type ReadFileArgs struct {
	Path string
}

func decodeReadFile(args map[string]any) (tools.Invocation, error) {
	path, err := tools.StringArg(args, "path", true)
	if err != nil {
		return nil, err
	}
	return ReadFileArgs{Path: path}, nil
}

// Describe names the file.
func (a ReadFileArgs) Describe() []string {
	return []string{"Reading file: " + a.Path}
}

// Run returns the UTF-8 text of the file, clipped.
func (a ReadFileArgs) Run(ctx context.Context) tools.Result {
	logging.ToolsDebug("read_file_content: path=%s", a.Path)

	content, err := os.ReadFile(a.Path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return tools.Errorf("Error: File '%s' not found.", a.Path)
		case errors.Is(err, fs.ErrPermission):
			return tools.Errorf("Error: Permission denied to access '%s'.", a.Path)
		default:
			return tools.Errorf("Error reading file '%s': %v", a.Path, err)
		}
	}

	if !utf8.Valid(content) {
		return tools.Errorf("Error: Unable to decode '%s'. The file might be binary or use an unsupported encoding.", a.Path)
	}

	logging.Tools("read_file_content completed: %s (%d bytes)", a.Path, len(content))
	return tools.OK(tools.Clip(string(content)))
}
