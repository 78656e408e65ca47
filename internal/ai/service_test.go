package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type fakeChat struct {
	reply string
	err   error

	calls    int
	lastMsgs []openai.ChatCompletionMessage
	lastMod  string
}

func (f *fakeChat) GetCompletion(_ context.Context, messages []openai.ChatCompletionMessage, model string) (string, error) {
	f.calls++
	f.lastMsgs = messages
	f.lastMod = model
	return f.reply, f.err
}

type fakeNotifier struct {
	errs []error
}

func (n *fakeNotifier) Notify(_ context.Context, err error, _ string) error {
	n.errs = append(n.errs, err)
	return nil
}

func newTestService(c ChatClient, n *fakeNotifier) *AiService {
	return NewAiService(c, "gpt-4", time.Second, n, logger.NewZapLogger(zap.NewNop().Sugar()))
}

func TestAskBuildsSingleTurnRequest(t *testing.T) {
	chat := &fakeChat{reply: "Hi there"}
	svc := newTestService(chat, &fakeNotifier{})

	got, err := svc.Ask(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != "Hi there" {
		t.Errorf("Ask() = %q, want %q", got, "Hi there")
	}
	if chat.lastMod != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", chat.lastMod)
	}
	if len(chat.lastMsgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(chat.lastMsgs))
	}
	if chat.lastMsgs[0].Role != openai.ChatMessageRoleSystem || chat.lastMsgs[0].Content != SystemPrompt {
		t.Errorf("system message = %+v", chat.lastMsgs[0])
	}
	if chat.lastMsgs[1].Role != openai.ChatMessageRoleUser || chat.lastMsgs[1].Content != "Hello" {
		t.Errorf("user message = %+v", chat.lastMsgs[1])
	}
}

func TestAskForwardsEmptyQuery(t *testing.T) {
	chat := &fakeChat{reply: "?"}
	svc := newTestService(chat, &fakeNotifier{})

	if _, err := svc.Ask(context.Background(), ""); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if chat.calls != 1 {
		t.Errorf("provider calls = %d, want 1", chat.calls)
	}
}

func TestAskWrapsProviderError(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 500, Message: "boom"}
	svc := newTestService(&fakeChat{err: apiErr}, &fakeNotifier{})

	_, err := svc.Ask(context.Background(), "Hello")
	if !errors.Is(err, apiErr) {
		t.Fatalf("Ask() error = %v, want wrapped APIError", err)
	}
}

func TestReply(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		chat       *fakeChat
		wantJSON   string
		wantCalls  int
		wantAlerts int
	}{
		{
			name:      "empty query is rejected without provider call",
			query:     "",
			chat:      &fakeChat{reply: "unused"},
			wantJSON:  `{"error":"Message is required."}`,
			wantCalls: 0,
		},
		{
			name:      "success",
			query:     "Hello",
			chat:      &fakeChat{reply: "Hi there"},
			wantJSON:  `{"response":"Hi there"}`,
			wantCalls: 1,
		},
		{
			name:       "api error is contained",
			query:      "Hello",
			chat:       &fakeChat{err: &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}},
			wantJSON:   `{"error":"rate limited"}`,
			wantCalls:  1,
			wantAlerts: 1,
		},
		{
			name:       "non api error uses its text",
			query:      "Hello",
			chat:       &fakeChat{err: errors.New("dial tcp: refused")},
			wantCalls:  1,
			wantAlerts: 1,
		},
		{
			name:      "empty provider reply is still a response",
			query:     "Hello",
			chat:      &fakeChat{reply: ""},
			wantJSON:  `{"response":""}`,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			svc := newTestService(tt.chat, n)

			reply := svc.Reply(context.Background(), tt.query)

			b, err := json.Marshal(reply)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if tt.wantJSON != "" && string(b) != tt.wantJSON {
				t.Errorf("Reply() = %s, want %s", b, tt.wantJSON)
			}
			if tt.chat.calls != tt.wantCalls {
				t.Errorf("provider calls = %d, want %d", tt.chat.calls, tt.wantCalls)
			}
			if len(n.errs) != tt.wantAlerts {
				t.Errorf("alerts = %d, want %d", len(n.errs), tt.wantAlerts)
			}
		})
	}
}

func TestReplyPlainErrorMessage(t *testing.T) {
	svc := newTestService(&fakeChat{err: errors.New("dial tcp: refused")}, &fakeNotifier{})

	reply := svc.Reply(context.Background(), "Hello")
	if !reply.Failed() {
		t.Fatal("expected failed reply")
	}
	if reply.Error != "dial tcp: refused" {
		t.Errorf("Error = %q, want %q", reply.Error, "dial tcp: refused")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), "boom"},
		{"chat call", &CallError{Op: "chat completion (gpt-4, 0.3s)", Err: errors.New("dial tcp: refused")}, "dial tcp: refused"},
		{"nested calls", &CallError{Op: "transcribe", Err: &CallError{Op: "whisper", Err: errors.New("EOF")}}, "EOF"},
		{"fmt wrap around call", fmt.Errorf("job: %w", &CallError{Op: "whisper", Err: errors.New("reset")}), "reset"},
		{"api error", &CallError{Op: "whisper", Err: &openai.APIError{HTTPStatusCode: 400, Message: "Invalid file format."}}, "Invalid file format."},
		{"api error without message", &CallError{Op: "whisper", Err: &openai.APIError{HTTPStatusCode: 500}}, (&openai.APIError{HTTPStatusCode: 500}).Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatReplyRoundTrip(t *testing.T) {
	var r ChatReply
	if err := json.Unmarshal([]byte(`{"error":"rate limited"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.Failed() || r.Error != "rate limited" {
		t.Errorf("got %+v", r)
	}
}
