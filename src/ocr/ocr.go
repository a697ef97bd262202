package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"screenotate/src/llm"
)

// VisionFunc transcribes a PNG.
type VisionFunc func(ctx context.Context, png []byte) (string, error)

// Extractor turns captured pixels into searchable text for the document.
type Extractor struct {
	Deadline time.Duration
	Vision   VisionFunc
}

// New returns an Extractor backed by the configured vision model.
func New(deadline time.Duration) *Extractor {
	return &Extractor{Deadline: deadline, Vision: llm.QueryVision}
}

// Extract returns the transcribed text. An image without text is not an
// error; it yields "".
func (e *Extractor) Extract(ctx context.Context, png []byte) (string, error) {
	if e == nil || e.Vision == nil {
		return "", nil
	}
	if e.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Deadline)
		defer cancel()
	}

	if os.Getenv("OCR_DEBUG_SAVE_IMAGES") == "true" {
		debugFilename := fmt.Sprintf("debug_capture_%d.png", time.Now().UnixNano())
		if err := os.WriteFile(debugFilename, png, 0600); err != nil {
			log.Printf("ocr: could not save debug image: %v", err)
		}
	}

	text, err := e.Vision(ctx, png)
	if errors.Is(err, llm.ErrNoText) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
