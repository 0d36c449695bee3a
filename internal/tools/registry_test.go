package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"microagent/internal/types"
)

type echoInvocation struct {
	text string
}

func (e echoInvocation) Describe() []string { return []string{"echo " + e.text} }

func (e echoInvocation) Run(ctx context.Context) Result { return OK(e.text) }

func echoTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "Echo the text argument",
		Schema: ToolSchema{
			Required:   []string{"text"},
			Properties: map[string]Property{"text": {Type: "string", Description: "text to echo"}},
		},
		Decode: func(args map[string]any) (Invocation, error) {
			text, err := StringArg(args, "text", true)
			if err != nil {
				return nil, err
			}
			return echoInvocation{text: text}, nil
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(echoTool("echo")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("echo")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "echo" {
		t.Errorf("got name %q, want %q", got.Name, "echo")
	}
	if !reg.Has("echo") || reg.Has("missing") {
		t.Error("Has reported wrong membership")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(echoTool("dupe")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	err := reg.Register(echoTool("dupe"))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Errorf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&Tool{Decode: echoTool("x").Decode}); !errors.Is(err, ErrToolNameEmpty) {
		t.Errorf("expected ErrToolNameEmpty, got %v", err)
	}
	if err := reg.Register(&Tool{Name: "nodecode"}); !errors.Is(err, ErrToolDecodeNil) {
		t.Errorf("expected ErrToolDecodeNil, got %v", err)
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("once"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate MustRegister")
		}
	}()
	reg.MustRegister(echoTool("once"))
}

func TestAllKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		reg.MustRegister(echoTool(name))
	}

	var order []string
	for _, tool := range reg.All() {
		order = append(order, tool.Name)
	}
	if strings.Join(order, ",") != "zeta,alpha,mid" {
		t.Errorf("All order = %v", order)
	}
	if strings.Join(reg.Names(), ",") != "alpha,mid,zeta" {
		t.Errorf("Names should be sorted, got %v", reg.Names())
	}
}

func TestPrepare(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("echo"))

	t.Run("unknown tool", func(t *testing.T) {
		tool, inv, err := reg.Prepare("nope", nil)
		if !errors.Is(err, ErrToolNotFound) {
			t.Fatalf("expected ErrToolNotFound, got %v", err)
		}
		if tool != nil || inv != nil {
			t.Error("expected nil tool and invocation")
		}
	})

	t.Run("missing required", func(t *testing.T) {
		tool, _, err := reg.Prepare("echo", nil)
		if !errors.Is(err, ErrInvalidArgs) || !errors.Is(err, ErrMissingRequiredArg) {
			t.Fatalf("expected invalid args / missing arg, got %v", err)
		}
		if tool == nil {
			t.Error("tool should be returned for known names")
		}
		if !strings.Contains(err.Error(), "invalid arguments for echo") {
			t.Errorf("error should name the tool: %v", err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		_, _, err := reg.Prepare("echo", map[string]any{"text": 42})
		if !errors.Is(err, ErrInvalidArgType) {
			t.Fatalf("expected ErrInvalidArgType, got %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		_, inv, err := reg.Prepare("echo", map[string]any{"text": "hi"})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		if got := inv.Run(context.Background()).Text(); got != "hi" {
			t.Errorf("Run text = %q", got)
		}
	})
}

func TestPrepareCall(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("echo"))

	_, inv, err := reg.PrepareCall(types.ToolCall{Name: "echo", Arguments: map[string]any{"text": "ok"}})
	if err != nil {
		t.Fatalf("PrepareCall failed: %v", err)
	}
	if got := inv.Run(context.Background()).Text(); got != "ok" {
		t.Errorf("Run text = %q", got)
	}

	tool, inv, err := reg.PrepareCall(types.ToolCall{Name: "echo", Arguments: map[string]any{}, InvalidArguments: `"ok"`})
	if !errors.Is(err, ErrInvalidArgs) || !errors.Is(err, ErrInvalidArgType) {
		t.Fatalf("expected ErrInvalidArgs and ErrInvalidArgType, got %v", err)
	}
	if tool == nil || inv != nil {
		t.Errorf("expected tool without invocation, got tool=%v inv=%v", tool, inv)
	}
	if !strings.Contains(err.Error(), `arguments must be an object, got "ok"`) {
		t.Errorf("unexpected error text %q", err)
	}

	_, _, err = reg.PrepareCall(types.ToolCall{Name: "ghost", InvalidArguments: `"ok"`})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}
