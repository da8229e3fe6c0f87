package get_build_history

// GetBuildHistoryQuery represents a query for recorded builds, newest first.
type GetBuildHistoryQuery struct {
	// RecipeName filters builds to one recipe. Empty lists all recipes.
	RecipeName string
	// Limit caps the number of builds returned. Zero applies the default.
	Limit int
}

// Name returns the name of the query
func (q GetBuildHistoryQuery) Name() string {
	return "GetBuildHistory"
}
