// Package condition implements the alert condition language: a static
// variable catalog, two authoring grammars (a flat infix form and a JSON
// tree form), and a fail-closed evaluator over a point-in-time variable
// snapshot.
package condition

// VariableDescriptor describes one variable conditions may reference.
type VariableDescriptor struct {
	// Name is the unique key used in conditions and snapshots.
	Name string `json:"name"`

	// Description is the human-readable explanation shown to authors.
	Description string `json:"description"`
}

// Catalog is the registry of known variables. It is defined once at process
// start, is immutable, and is the sole source of truth for "known variable"
// checks in validation and the authoring surface.
type Catalog struct {
	ordered []VariableDescriptor
	byName  map[string]VariableDescriptor
}

// Variable names exposed by the default catalog.
const (
	VarActiveUsers    = "active_users"
	VarDocumentsToday = "documents_today"
	VarErrorRate      = "error_rate"
	VarQueueSize      = "queue_size"
	VarCurrentHour    = "current_hour"
	VarCurrentDate    = "current_date"
	VarCPUUsage       = "cpu_usage"
	VarMemoryUsage    = "memory_usage"
	VarDBConnections  = "db_connections"
	VarAPILatency     = "api_latency"
)

// DefaultCatalog returns the catalog of variables the snapshot builder
// produces: platform load, temporal values, and infrastructure health.
func DefaultCatalog() *Catalog {
	return NewCatalog([]VariableDescriptor{
		{Name: VarActiveUsers, Description: "Number of users active today"},
		{Name: VarDocumentsToday, Description: "Documents processed today"},
		{Name: VarErrorRate, Description: "Percentage of document classifications that failed today"},
		{Name: VarQueueSize, Description: "Documents waiting in the processing queue"},
		{Name: VarCurrentHour, Description: "Current hour of day (0-23, UTC)"},
		{Name: VarCurrentDate, Description: "Current date (UTC, midnight-truncated)"},
		{Name: VarCPUUsage, Description: "Host CPU usage percentage"},
		{Name: VarMemoryUsage, Description: "Host memory usage percentage"},
		{Name: VarDBConnections, Description: "Open database connections"},
		{Name: VarAPILatency, Description: "Average API latency in milliseconds"},
	})
}

// NewCatalog builds a catalog from an ordered descriptor list.
func NewCatalog(vars []VariableDescriptor) *Catalog {
	byName := make(map[string]VariableDescriptor, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	return &Catalog{
		ordered: append([]VariableDescriptor(nil), vars...),
		byName:  byName,
	}
}

// Has returns true if the variable name is known.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Variables returns the descriptors in authoring order.
func (c *Catalog) Variables() []VariableDescriptor {
	return append([]VariableDescriptor(nil), c.ordered...)
}
