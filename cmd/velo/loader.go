package main

import (
	"context"
	"os"

	"github.com/velo-dev/velo/pkg/component"
)

// diskFileLoader resolves companion file references against the working
// directory. Missing declared files are an error; undeclared slots stay
// empty.
func diskFileLoader(ctx context.Context, name string, refs component.FileRefs) (*component.FileContent, error) {
	content := &component.FileContent{}

	read := func(path string, dst *string) error {
		if path == "" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		*dst = string(raw)
		return nil
	}

	if err := read(refs.HTML, &content.HTML); err != nil {
		return nil, err
	}
	if err := read(refs.MD, &content.MD); err != nil {
		return nil, err
	}
	if err := read(refs.CSS, &content.CSS); err != nil {
		return nil, err
	}
	return content, nil
}
