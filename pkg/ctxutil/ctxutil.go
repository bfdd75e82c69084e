package ctxutil

import "context"

type ctxKey string

const (
	editorIDKey  ctxKey = "editor_id"
	requestIDKey ctxKey = "request_id"
)

// WithEditorID stores the id of the editor performing a write.
func WithEditorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, editorIDKey, id)
}

// EditorIDFromCtx extracts the editor id set by an upstream auth layer.
// Returns 0 and false if the value is missing, non-positive, or of the wrong type.
func EditorIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(editorIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
