package provider

import (
	"context"
	"os"

	"github.com/menuforge/menuforge/pkg/errors"
)

// ImageProvider produces an encoded background image for a prompt at the
// requested dimensions. Providers that cannot honor the dimensions exactly
// return the closest image they have; the pipeline measures whatever comes
// back.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, width, height int) ([]byte, error)
}

// FileProvider serves a fixed local image file. The prompt and dimensions
// are ignored; the file is returned as-is.
type FileProvider struct {
	Path string
}

// NewFileProvider creates a provider backed by the image at path.
func NewFileProvider(path string) (*FileProvider, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileProvider{Path: path}, nil
}

// Generate reads and returns the file contents.
func (p *FileProvider) Generate(ctx context.Context, prompt string, width, height int) ([]byte, error) {
	data, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "background image not found: %s", p.Path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading background image %s", p.Path)
	}
	return data, nil
}
