// Package notify delivers rendered reports to people. The pipeline
// talks to the Sink interface only; Telegram is the production sink.
package notify

import (
	"context"
	"log"
)

// Sink delivers one report to its destination.
type Sink interface {
	SendText(ctx context.Context, text string) error
	SendImage(ctx context.Context, caption string, png []byte) error
}

// Logger is a Sink that writes to a log instead of a chat. Used in
// development and whenever no bot token is configured.
type Logger struct {
	L *log.Logger
}

func (l Logger) SendText(_ context.Context, text string) error {
	l.L.Printf("notify:\n%s", text)
	return nil
}

func (l Logger) SendImage(_ context.Context, caption string, png []byte) error {
	l.L.Printf("notify: image %q (%d bytes)", caption, len(png))
	return nil
}
