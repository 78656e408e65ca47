package ai

import (
	"errors"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
)

const MessageRequired = "Message is required."

// ChatReply сериализуется ровно в {"response": ...} или {"error": ...}.
type ChatReply struct {
	Text  string
	Error string
}

func (r ChatReply) Failed() bool {
	return r.Error != ""
}

func (r ChatReply) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		Response string `json:"response"`
	}{r.Text})
}

func (r *ChatReply) UnmarshalJSON(data []byte) error {
	var raw struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Text, r.Error = raw.Response, raw.Error
	return nil
}

// CallError помечает обёртку вокруг вызова провайдера: Op идёт в логи и алерты, клиенту не отдаётся.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// ErrorMessage — текст ошибки для клиента: message провайдера, если он есть,
// иначе текст ошибки клиента провайдера без наших обёрток.
func ErrorMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var callErr *CallError
	for errors.As(err, &callErr) && callErr.Err != nil {
		err = callErr.Err
	}
	return err.Error()
}
