package speech

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempAudio — копия загруженного файла на диске, живёт до Remove.
type TempAudio struct {
	Path string
	Size int64
}

// SpoolTemp пишет r во временный файл с расширением исходного имени
// (Whisper определяет формат по расширению). При ошибке файл удаляется.
func SpoolTemp(dir string, r io.Reader, uploadName string) (*TempAudio, error) {
	f, err := os.CreateTemp(dir, "whisper-*"+safeExt(uploadName))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("write temp: %w", err)
	}

	return &TempAudio{Path: f.Name(), Size: n}, nil
}

func (t *TempAudio) Remove() error {
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 || strings.ContainsAny(ext, `*/\`) {
		return ""
	}
	return ext
}
