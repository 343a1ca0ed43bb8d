// Package inventory defines the seam between devstop and the cloud
// provider's instance inventory and control API.
package inventory

import (
	"context"

	"github.com/yairfalse/devstop/internal/filter"
	"github.com/yairfalse/devstop/pkg/instance"
)

// Inventory lists instances and requests power state changes.
type Inventory interface {
	// ListInstances returns the instances matching f in provider order.
	ListInstances(ctx context.Context, f filter.Filter) ([]instance.Instance, error)

	// StopInstance requests a stop and returns once it is acknowledged.
	// It does not wait for the instance to reach the stopped state.
	StopInstance(ctx context.Context, id string) error
}
