package condition

// Template is a named starting condition offered by the authoring surface.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
}

// Templates returns the built-in authoring templates. All of them validate
// against the default catalog.
func Templates() []Template {
	return []Template{
		{
			Name:        "error-rate-above-threshold",
			Description: "Classification error rate exceeds 5%",
			Condition:   "error_rate > 5",
		},
		{
			Name:        "low-throughput",
			Description: "Fewer than 50 documents processed today",
			Condition:   "documents_today < 50",
		},
		{
			Name:        "business-hours-only",
			Description: "Low throughput, checked only between 09:00 and 18:00 UTC",
			Condition:   `{"AND":[{"variable":"current_hour","operator":">=","value":9},{"variable":"current_hour","operator":"<","value":18},{"variable":"documents_today","operator":"<","value":50}]}`,
		},
		{
			Name:        "queue-backlog",
			Description: "More than 100 documents waiting in the processing queue",
			Condition:   "queue_size > 100",
		},
		{
			Name:        "infrastructure-pressure",
			Description: "CPU or memory usage above 90%",
			Condition:   "cpu_usage > 90 OR memory_usage > 90",
		},
		{
			Name:        "slow-api",
			Description: "Average API latency above one second",
			Condition:   "api_latency > 1000",
		},
		{
			Name:        "no-active-users",
			Description: "Nobody has used the platform today",
			Condition:   "active_users = 0",
		},
	}
}
