package model

import "context"

// Warnings collects non-fatal notices accumulated while handling a request.
// A nil *Warnings is safe to use; Add becomes a no-op.
type Warnings struct {
	items []string
}

func (w *Warnings) Add(msg string) {
	if w == nil {
		return
	}
	w.items = append(w.items, msg)
}

func (w *Warnings) Items() []string {
	if w == nil {
		return nil
	}
	return w.items
}

type warningsKey struct{}

// WithWarnings attaches a fresh warnings bag to ctx and returns both.
func WithWarnings(ctx context.Context) (context.Context, *Warnings) {
	w := &Warnings{}
	return context.WithValue(ctx, warningsKey{}, w), w
}

// WarningsFrom returns the bag attached to ctx, or nil when absent.
func WarningsFrom(ctx context.Context) *Warnings {
	w, _ := ctx.Value(warningsKey{}).(*Warnings)
	return w
}
