package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerNotifierRedactsLoginCodes(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := n.Send(context.Background(), Message{Kind: KindLoginCode, Destination: "7001", Body: "kod: 482913"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(buf.String(), "482913") {
		t.Fatalf("login code leaked into log: %s", buf.String())
	}

	buf.Reset()
	if err := n.Send(context.Background(), Message{Kind: KindNotice, Destination: "7001", Body: "salom"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "salom") {
		t.Fatalf("expected notice body in log, got %s", buf.String())
	}
}

func TestRecorderCopiesMessages(t *testing.T) {
	r := &Recorder{}
	_ = r.Send(context.Background(), Message{Kind: KindNotice, Body: "a"})

	got := r.Messages()
	got[0].Body = "changed"
	if r.Messages()[0].Body != "a" {
		t.Fatalf("recorder state mutated through returned slice")
	}
}
