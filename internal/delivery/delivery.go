// Package delivery defines the entry points that expose the use cases.
package delivery

import "context"

// Delivery is a long-running front end such as the HTTP server.
type Delivery interface {
	Serve(ctx context.Context) error
}
