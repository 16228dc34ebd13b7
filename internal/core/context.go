package core

import (
	"context"
	"errors"
)

var (
	// ErrMissingImportKey is returned when a schedule change arrives without
	// an X-API-Key header.
	ErrMissingImportKey = errors.New("missing api key")

	// ErrInvalidImportKey is returned when the X-API-Key matches no importer.
	ErrInvalidImportKey = errors.New("invalid api key")
)

type importerKey struct{}

// ContextWithImporter records the name of the importer whose key
// authorized the request. Import and Preview copy it into ImportResult.
func ContextWithImporter(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, importerKey{}, name)
}

// ImporterFromContext returns the name set by ContextWithImporter, or "".
func ImporterFromContext(ctx context.Context) string {
	name, _ := ctx.Value(importerKey{}).(string)
	return name
}
