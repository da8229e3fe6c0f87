package cqrs

// Query is a marker interface for queries. Queries read state and return
// a result.
type Query interface {
	NameProvider
}

// QueryHandler handles a specific query type and returns a result of type R.
type QueryHandler[Q Query, R any] interface {
	// Handle executes the query and returns the result.
	Handle(query Q) (R, error)
}

// QueryBus dispatches queries to their registered handlers.
type QueryBus interface {
	ActionProvider

	// Dispatch sends a query to its registered handler and returns the result.
	Dispatch(query Query) (interface{}, error)
}
