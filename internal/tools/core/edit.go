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

// EditFileTool returns a tool for creating files and replacing text in them.
func EditFileTool() *tools.Tool {
	return &tools.Tool{
		Name:        "edit_file",
		Description: "Modify files by replacing text or create new files",
		Schema: tools.ToolSchema{
			Required: []string{"filename"},
			Properties: map[string]tools.Property{
				"filename": {
					Type:        "string",
					Description: "The file to edit or create",
				},
				"find_str": {
					Type:        "string",
					Description: "Exact text to find; empty to create a new file",
				},
				"replace_str": {
					Type:        "string",
					Description: "Replacement text, or the content of a new file",
				},
			},
			Order: []string{"filename", "find_str", "replace_str"},
		},
		Approval: &tools.Approval{
			Question:      "Do you want to edit this file?",
			CancelMessage: "File edit cancelled by user.",
		},
		Decode: decodeEditFile,
	}
}

// EditFileArgs are the typed arguments of edit_file.
type EditFileArgs struct {
	Filename string
	Find     string
	Replace  string
}

func decodeEditFile(args map[string]any) (tools.Invocation, error) {
	filename, err := tools.StringArg(args, "filename", true)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: filename", tools.ErrMissingRequiredArg)
	}
	find, err := tools.StringArg(args, "find_str", false)
	if err != nil {
		return nil, err
	}
	replace, err := tools.StringArg(args, "replace_str", false)
	if err != nil {
		return nil, err
	}
	return EditFileArgs{Filename: filename, Find: find, Replace: replace}, nil
}

// Describe shows the file and the find/replace blocks.
func (a EditFileArgs) Describe() []string {
	lines := []string{"Editing file: " + a.Filename}
	if a.Find != "" {
		lines = append(lines, "Content to find:\n```\n"+a.Find+"\n```")
	}
	if a.Replace != "" {
		lines = append(lines, "Content to replace with:\n```\n"+a.Replace+"\n```")
	}
	return lines
}

// Run creates the file when it is absent and Find is empty; otherwise it
// replaces every occurrence of Find.
func (a EditFileArgs) Run(ctx context.Context) tools.Result {
	logging.ToolsDebug("edit_file: path=%s, find_len=%d, replace_len=%d", a.Filename, len(a.Find), len(a.Replace))

	info, statErr := os.Stat(a.Filename)
	exists := statErr == nil

	if !exists && errors.Is(statErr, fs.ErrNotExist) && a.Find == "" {
		return a.create()
	}

	if exists && info.IsDir() {
		return tools.Errorf("Error editing file %s: is a directory", a.Filename)
	}
	if exists && a.Find == "" {
		return tools.Errorf("Error: File %s already exists; find_str must not be empty when editing it", a.Filename)
	}

	content, err := os.ReadFile(a.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tools.Errorf("Error: File %s not found", a.Filename)
		}
		return tools.Errorf("Error editing file %s: %v", a.Filename, err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, a.Find) {
		return tools.Errorf("Error: String not found in %s", a.Filename)
	}

	count := strings.Count(contentStr, a.Find)
	newContent := strings.ReplaceAll(contentStr, a.Find, a.Replace)

	mode := fs.FileMode(0644)
	if exists {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(a.Filename, []byte(newContent), mode); err != nil {
		return tools.Errorf("Error editing file %s: %v", a.Filename, err)
	}

	logging.Tools("edit_file completed: %s (%d replacements)", a.Filename, count)
	return tools.OK(fmt.Sprintf("Successfully edited %s (replaced %d occurrence(s))", a.Filename, count))
}

func (a EditFileArgs) create() tools.Result {
	if dir := filepath.Dir(a.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return tools.Errorf("Error creating file %s: %v", a.Filename, err)
		}
	}
	if err := os.WriteFile(a.Filename, []byte(a.Replace), 0644); err != nil {
		return tools.Errorf("Error creating file %s: %v", a.Filename, err)
	}

	logging.Tools("edit_file created: %s (%d bytes)", a.Filename, len(a.Replace))
	return tools.OK("Successfully created new file: " + a.Filename)
}
