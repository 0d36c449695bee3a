package types

import (
	"context"
)

// ChatClient is the model backend contract: send the ordered conversation,
// receive the text of one assistant message.
// Any returned error is a transport failure.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	// Model returns the model identifier sent with every request.
	Model() string
}
