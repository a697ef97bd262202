package window

import (
	"context"
	"log"

	"screenotate/src/geometry"
)

// DefaultNormalLayer is the layer ordinary application windows live on.
// Desktop icons, panels, menu bars and overlays report other layers.
const DefaultNormalLayer = 0

// Info describes one on-screen window as reported by a Lister.
type Info struct {
	Bounds geometry.Rect // global, top-left origin
	Layer  int
	Title  *string
	Owner  *string
}

// Lister returns on-screen windows ordered front to back.
type Lister interface {
	ListOnScreen(ctx context.Context) ([]Info, error)
}

// Context is the window metadata attached to a capture. Both fields are
// optional.
type Context struct {
	Title *string
	Owner *string
}

// Resolver finds the topmost normal window under a point.
type Resolver struct {
	Lister      Lister
	NormalLayer int
}

func NewResolver(l Lister, normalLayer int) *Resolver {
	return &Resolver{Lister: l, NormalLayer: normalLayer}
}

// Resolve returns the title and owner of the first normal-layer window whose
// bounds contain p. The lister's front-to-back order is what makes the first
// match the topmost window.
func (r *Resolver) Resolve(ctx context.Context, p geometry.Point) Context {
	if r == nil || r.Lister == nil {
		return Context{}
	}
	windows, err := r.Lister.ListOnScreen(ctx)
	if err != nil {
		log.Printf("window: list failed: %v", err)
		return Context{}
	}
	for _, w := range windows {
		if w.Layer != r.NormalLayer {
			continue
		}
		if geometry.PointInRect(p, w.Bounds) {
			return Context{Title: w.Title, Owner: w.Owner}
		}
	}
	return Context{}
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional string, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
