package consumers

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"opensms/internal/settings"
)

// File reads a payload from a spool file and removes it so the same
// payload is not replayed on the next request. The path comes from the
// opensms/payload_file setting unless fixed at construction.
type File struct {
	Path string
}

func (File) Name() string { return "spool_file" }

func (f File) Consume(ctx context.Context, st settings.Source) ([]byte, error) {
	path := f.Path
	if path == "" {
		path = st.Get(ctx, "opensms", "payload_file", "")
	}
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) > 0 {
		_ = os.Remove(path)
	}
	return raw, nil
}
