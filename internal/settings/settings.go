// Package settings exposes per-deployment configuration to pipeline
// stages as a category/subcategory lookup with a caller-supplied default.
package settings

import "context"

// Source is the read side used by adapters, modifiers and listeners.
type Source interface {
	Get(ctx context.Context, category, subcategory, defaultValue string) string
}

// Static is an in-memory Source keyed by "category/subcategory". Used in
// tests and in deployments that configure everything through the
// environment.
type Static map[string]string

func (s Static) Get(_ context.Context, category, subcategory, defaultValue string) string {
	if v, ok := s[category+"/"+subcategory]; ok {
		return v
	}
	return defaultValue
}
