package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/outreach/internal/core"
)

// analyzeFile parses path with the root options.
func (o *rootOptions) analyzeFile(ctx context.Context, path string) (*core.AnalyzeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return o.newService(nil).Analyze(ctx, core.FileRequest{
		FileName: path,
		Body:     f,
	})
}
