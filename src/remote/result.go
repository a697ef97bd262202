// Package remote talks to the cloud folder captures are shared from.
package remote

import (
	"context"
	"errors"
)

type Kind int

const (
	Success Kind = iota
	ApplicationError
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ApplicationError:
		return "application error"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one remote call. Path is the remote path a
// successful upload was stored under, URL is set for successful share-link
// requests and Message is set for both error kinds.
type Result struct {
	Kind    Kind
	Path    string
	URL     string
	Message string
}

func Succeeded(url string) Result { return Result{Kind: Success, URL: url} }

func Stored(path string) Result { return Result{Kind: Success, Path: path} }

func AppFailure(msg string) Result { return Result{Kind: ApplicationError, Message: msg} }

func TransportFailure(err error) Result {
	return Result{Kind: TransportError, Message: err.Error()}
}

// Err is nil for Success and carries Message otherwise.
func (r Result) Err() error {
	if r.Kind == Success {
		return nil
	}
	return errors.New(r.Message)
}

// Storage uploads documents and creates share links for them. One client is
// created per process and reused across captures. ShareLink takes the Path
// returned by Upload, which may differ from the requested filename when the
// remote renamed the file to avoid a collision.
type Storage interface {
	Upload(ctx context.Context, filename string, data []byte) Result
	ShareLink(ctx context.Context, path string) Result
}
