package http

import (
	"context"

	"github.com/example/irfit-gateway/internal/access"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

// ContextWithViewer returns a derived context containing the signed-in viewer.
func ContextWithViewer(ctx context.Context, viewer *access.Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, viewer)
}

// ViewerFromContext extracts the viewer. It returns nil for anonymous requests.
func ViewerFromContext(ctx context.Context) *access.Viewer {
	viewer, _ := ctx.Value(viewerContextKey).(*access.Viewer)
	return viewer
}
