// Package core provides the filesystem tools of the closed tool set.
//
// Tools:
//   - edit_file: Create a file or replace text in it (requires approval)
//   - list_directory: List directory contents
//   - read_file_content: Read a file, clipped to 2000 characters
//
// Every failure is reported as result text; nothing escapes the registry.
package core
