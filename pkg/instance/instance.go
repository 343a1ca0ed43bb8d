// Package instance defines the compute instance model used by devstop.
package instance

// State is the power state reported by the inventory.
type State string

// Power states as reported by EC2.
const (
	StatePending      State = "pending"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting-down"
	StateTerminated   State = "terminated"
	StateStopping     State = "stopping"
	StateStopped      State = "stopped"
)

// Instance is a read-only reference to an instance owned by the inventory.
type Instance struct {
	ID    string            `json:"id"`    // e.g. "i-abc123"
	State State             `json:"state"` // power state at query time
	Tags  map[string]string `json:"tags"`  // case-sensitive keys and values
}

// Tag returns the value of the tag key and whether it is set.
func (i Instance) Tag(key string) (string, bool) {
	v, ok := i.Tags[key]
	return v, ok
}

// IDs returns the identifiers of instances in order.
func IDs(instances []Instance) []string {
	ids := make([]string, 0, len(instances))
	for _, i := range instances {
		ids = append(ids, i.ID)
	}
	return ids
}
