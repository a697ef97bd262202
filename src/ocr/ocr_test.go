package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"screenotate/src/llm"
)

func TestExtractReturnsText(t *testing.T) {
	e := &Extractor{Vision: func(ctx context.Context, png []byte) (string, error) {
		if len(png) != 3 {
			t.Errorf("unexpected image length %d", len(png))
		}
		return "hello", nil
	}}

	text, err := e.Extract(context.Background(), []byte{1, 2, 3})
	if err != nil || text != "hello" {
		t.Fatalf("Extract = %q, %v", text, err)
	}
}

func TestExtractNoTextIsEmpty(t *testing.T) {
	e := &Extractor{Vision: func(ctx context.Context, png []byte) (string, error) {
		return "", llm.ErrNoText
	}}
	text, err := e.Extract(context.Background(), nil)
	if err != nil || text != "" {
		t.Fatalf("Extract = %q, %v", text, err)
	}
}

func TestExtractAppliesDeadline(t *testing.T) {
	e := &Extractor{Deadline: 10 * time.Millisecond, Vision: func(ctx context.Context, png []byte) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	_, err := e.Extract(context.Background(), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestExtractNilExtractor(t *testing.T) {
	var e *Extractor
	if text, err := e.Extract(context.Background(), nil); text != "" || err != nil {
		t.Fatalf("Extract = %q, %v", text, err)
	}
}
