package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetLogging restores package state between tests.
func resetLogging(t *testing.T) {
	t.Helper()
	CloseAll()
	configMu.Lock()
	logsDir = ""
	workspace = ""
	options = Options{}
	configMu.Unlock()
	t.Cleanup(func() {
		CloseAll()
		configMu.Lock()
		logsDir = ""
		workspace = ""
		options = Options{}
		configMu.Unlock()
	})
}

func readLogs(t *testing.T, dir string) map[string]string {
	t.Helper()
	logsPath := filepath.Join(dir, ".microagent", "logs")
	entries, err := os.ReadDir(logsPath)
	require.NoError(t, err)

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
		require.NoError(t, err)
		out[entry.Name()] = string(data)
	}
	return out
}

func findLog(logs map[string]string, suffix string) (string, bool) {
	for name, content := range logs {
		if strings.HasSuffix(name, suffix) {
			return content, true
		}
	}
	return "", false
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	resetLogging(t)
	assert.Error(t, Initialize("", Options{}))
}

func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: true, Level: "debug"}))
	require.True(t, IsDebugMode())

	categories := []Category{
		CategoryBoot, CategorySession, CategoryAPI, CategoryPerception,
		CategoryAgent, CategoryTools, CategoryTactile, CategoryApproval,
	}
	for _, cat := range categories {
		assert.True(t, IsCategoryEnabled(cat), "category %s", cat)
		Get(cat).Info("info message for %s", cat)
		Get(cat).Debug("debug message for %s", cat)
	}

	CloseAll()

	logs := readLogs(t, dir)
	for _, cat := range categories {
		content, ok := findLog(logs, "_"+string(cat)+".log")
		if assert.True(t, ok, "no log file for %s", cat) {
			assert.Contains(t, content, "info message for "+string(cat))
			assert.Contains(t, content, "debug message for "+string(cat))
		}
	}
}

func TestGetConcurrentWithInitialize(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, Initialize(dir, Options{DebugMode: true}))
		}()
		go func() {
			defer wg.Done()
			Get(CategoryAgent).Info("concurrent write")
		}()
	}
	wg.Wait()

	assert.Equal(t, filepath.Join(dir, ".microagent", "logs"), currentLogsDir())
}

func TestDebugModeDisabled(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: false}))
	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryAgent))

	Agent("should not be written")
	Audit().Log(AuditEvent{EventType: AuditSessionStart})

	_, err := os.Stat(filepath.Join(dir, ".microagent", "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not exist in production mode")
}

func TestCategoryFilter(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"tools": false},
	}))

	assert.False(t, IsCategoryEnabled(CategoryTools))
	assert.True(t, IsCategoryEnabled(CategoryAgent))

	Tools("filtered out")
	Agent("kept")
	CloseAll()

	logs := readLogs(t, dir)
	_, hasTools := findLog(logs, "_tools.log")
	assert.False(t, hasTools)
	content, ok := findLog(logs, "_agent.log")
	require.True(t, ok)
	assert.Contains(t, content, "kept")
}

func TestLevelFiltering(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: true, Level: "warn"}))

	AgentDebug("hidden debug")
	Agent("hidden info")
	AgentWarn("visible warn")
	CloseAll()

	content, ok := findLog(readLogs(t, dir), "_agent.log")
	require.True(t, ok)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "visible warn")
}

func TestJSONFormat(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: true, JSONFormat: true}))
	Get(CategorySession).With("session_id", "abc").Info("appended %d", 3)
	CloseAll()

	content, ok := findLog(readLogs(t, dir), "_session.log")
	require.True(t, ok)

	line := strings.TrimSpace(strings.Split(strings.TrimSpace(content), "\n")[0])
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "appended 3", entry["msg"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, "session", entry["logger"])
}

func TestAuditEvents(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, Options{DebugMode: true}))

	audit := AuditWithSession("sess-1")
	audit.ToolEvent(AuditToolComplete, "edit_file", true, 12, "")
	audit.ApprovalEvent("run_command", false)
	CloseAll()

	content, ok := findLog(readLogs(t, dir), "_audit.log")
	require.True(t, ok)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "tool_complete", first["event"])
	assert.Equal(t, "edit_file", first["target"])
	assert.Equal(t, "sess-1", first["session"])
	assert.Equal(t, "approval_denied", second["event"])
	assert.Equal(t, false, second["success"])
}
