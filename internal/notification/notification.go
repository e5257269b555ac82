package notification

import (
	"context"
	"log/slog"
	"sync"
)

const (
	// KindLoginCode carries a freshly issued one-time code.
	KindLoginCode = "login_code"
	// KindNotice is any other text sent to a learner.
	KindNotice = "notice"
)

// Message is one outbound text addressed to a messaging-channel identity.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers messages over the messaging channel.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes messages to the logger instead of delivering them. Used when no
// bot token is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send logs the message. Login code bodies are withheld from the log.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	body := message.Body
	if message.Kind == KindLoginCode {
		body = "[redacted]"
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", body)
	return nil
}

// Recorder keeps every sent message in memory. Test helper.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Send appends the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
