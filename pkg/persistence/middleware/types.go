package middleware

import "github.com/glosskit/gloss/pkg/ports"

// Middleware allows wrapping an AnnotationStore to add behavior.
type Middleware func(ports.AnnotationStore) ports.AnnotationStore

// Chain applies middlewares around a store, first in the slice outermost.
func Chain(store ports.AnnotationStore, mws ...Middleware) ports.AnnotationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
