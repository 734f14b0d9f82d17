package view

import "context"

type settingsKey string

// BasicModeKey is the key for the basic mode setting in the request context.
const BasicModeKey settingsKey = "basicMode"

// WithBasicMode returns a copy of ctx carrying the basic mode flag.
func WithBasicMode(ctx context.Context, basic bool) context.Context {
	return context.WithValue(ctx, BasicModeKey, basic)
}

// IsBasicMode returns true if the "basic mode" flag is set in the request context.
// In basic mode pages are served without client-side islands.
func IsBasicMode(ctx context.Context) bool {
	basic, ok := ctx.Value(BasicModeKey).(bool)
	return ok && basic
}
