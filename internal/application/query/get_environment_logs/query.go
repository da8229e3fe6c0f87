package get_environment_logs

// GetEnvironmentLogsQuery represents a query for an environment's container
// logs within an optional time range.
type GetEnvironmentLogsQuery struct {
	EnvironmentName string
	// Since and Until are unix timestamps in seconds. Zero means unbounded.
	Since int64
	Until int64
	// Tail limits the number of lines per container. Zero or negative
	// returns all available lines.
	Tail int
}

// Name returns the name of the query
func (q GetEnvironmentLogsQuery) Name() string {
	return "GetEnvironmentLogs"
}
