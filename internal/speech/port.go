package speech

import "context"

type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error) // голос → текст
}
