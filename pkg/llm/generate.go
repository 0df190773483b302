package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CollectText drains a completion stream into a single string and closes it.
func CollectText(stream Stream) (string, error) {
	var result strings.Builder
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = stream.Close()
			return "", fmt.Errorf("recv stream: %w", err)
		}
		result.WriteString(chunk.Content)
	}
	_ = stream.Close()

	return strings.TrimSpace(result.String()), nil
}

// CompleteText runs a completion and returns the whole response as text.
// Empty output is reported as an error so callers can treat it as a
// recoverable provider failure.
func CompleteText(ctx context.Context, provider Provider, messages []Message) (string, error) {
	if provider == nil {
		return "", errors.New("provider is required")
	}
	stream, err := provider.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	text, err := CollectText(stream)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("provider returned empty output")
	}
	return text, nil
}
