package engine

import "context"

// Transformer bridges the files stage to the components stage. It receives the
// published file records and returns the initial component records.
type Transformer interface {
	Transform(ctx context.Context, files []any) ([]any, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, files []any) ([]any, error)

// Transform executes the wrapped function. A nil func yields no records.
func (fn TransformerFunc) Transform(ctx context.Context, files []any) ([]any, error) {
	if fn == nil {
		return []any{}, nil
	}
	return fn(ctx, files)
}

// Identity passes the file records through unchanged.
var Identity = TransformerFunc(func(_ context.Context, files []any) ([]any, error) {
	return files, nil
})

func defaultTransformer() Transformer {
	return TransformerFunc(func(context.Context, []any) ([]any, error) {
		return []any{}, nil
	})
}
