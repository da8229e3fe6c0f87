package get_environment_status

// GetEnvironmentStatusQuery represents a query for the runtime state of an
// environment.
type GetEnvironmentStatusQuery struct {
	EnvironmentName string
}

// Name returns the name of the query
func (q GetEnvironmentStatusQuery) Name() string {
	return "GetEnvironmentStatus"
}
