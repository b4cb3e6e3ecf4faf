package bot

import "context"

// Message is an inbound chat command
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Body string `json:"body"`
}

// Reply is one outbound chat message. A command can send several.
type Reply struct {
	InReplyTo string `json:"in_reply_to"`
	To        string `json:"to"`
	Type      string `json:"type"`
	Body      string `json:"body"`
}

// Sender delivers replies back to the chat
type Sender interface {
	Send(ctx context.Context, reply Reply) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, reply Reply) error

func (f SenderFunc) Send(ctx context.Context, reply Reply) error {
	return f(ctx, reply)
}
