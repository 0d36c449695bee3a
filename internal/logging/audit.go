package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of audit record.
type AuditEventType string

const (
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"

	AuditLLMRequest  AuditEventType = "llm_request"
	AuditLLMResponse AuditEventType = "llm_response"
	AuditLLMError    AuditEventType = "llm_error"

	AuditToolInvoke   AuditEventType = "tool_invoke"
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"
	AuditToolUnknown  AuditEventType = "tool_unknown"

	AuditApprovalGranted AuditEventType = "approval_granted"
	AuditApprovalDenied  AuditEventType = "approval_denied"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	EventType  AuditEventType
	SessionID  string
	Target     string // tool name, model name, ...
	Success    bool
	DurationMs int64
	Error      string
	Message    string
	Fields     map[string]interface{}
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile *os.File
	auditZap  *zap.Logger
	auditMu   sync.Mutex
)

// AuditLogger writes audit events, optionally scoped to a session.
type AuditLogger struct {
	sessionID string
}

func initAudit() error {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	file, err := openLogFile(currentLogsDir(), "audit")
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.EpochMillisTimeEncoder
	encCfg.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.InfoLevel)

	auditFile = file
	auditZap = zap.New(core).Named("audit")
	return nil
}

func closeAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditZap != nil {
		_ = auditZap.Sync()
		auditZap = nil
	}
	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event. No-op outside debug mode.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditZap == nil {
		return
	}

	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}

	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.Bool("success", event.Success),
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session", event.SessionID))
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.DurationMs > 0 {
		fields = append(fields, zap.Int64("dur_ms", event.DurationMs))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if len(event.Fields) > 0 {
		fields = append(fields, zap.Any("fields", event.Fields))
	}

	auditZap.Info(event.Message, fields...)
}

// ToolEvent is shorthand for tool_* events.
func (a *AuditLogger) ToolEvent(eventType AuditEventType, tool string, success bool, durationMs int64, errMsg string) {
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     tool,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
	})
}

// ApprovalEvent records an operator decision.
func (a *AuditLogger) ApprovalEvent(tool string, approved bool) {
	eventType := AuditApprovalDenied
	if approved {
		eventType = AuditApprovalGranted
	}
	a.Log(AuditEvent{EventType: eventType, Target: tool, Success: approved})
}
