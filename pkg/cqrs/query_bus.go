package cqrs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// ErrQueryBusShuttingDown is returned when a query is dispatched to a bus that is shutting down.
var ErrQueryBusShuttingDown = errors.New("query bus is shutting down")

// DefaultQueryBus is a simple implementation of the QueryBus interface.
type DefaultQueryBus struct {
	*Bus
}

// Compile-time assertion that *DefaultQueryBus implements the interface.
var _ QueryBus = (*DefaultQueryBus)(nil)

// NewQueryBus creates a new DefaultQueryBus. When the provided context is
// cancelled the bus initiates a graceful shutdown.
func NewQueryBus(ctx context.Context) *DefaultQueryBus {
	b := &DefaultQueryBus{
		Bus: NewBus("query"),
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			b.Shutdown()
		}()
	}

	return b
}

// validateQueryHandler checks if the handler's parameter implements Query and returns the query name.
func validateQueryHandler(handler interface{}, queryType reflect.Type) (string, error) {
	queryInstance := reflect.New(queryType).Elem().Interface()
	query, ok := queryInstance.(Query)
	if !ok {
		return "", fmt.Errorf("parameter type %s does not implement Query interface", queryType)
	}

	return query.Name(), nil
}

// Register registers a query handler for a specific query type.
// The handler must implement QueryHandler[Q, R] where Q is a Query type and R is the result type.
func (b *DefaultQueryBus) Register(handler interface{}) error {
	handlerType := reflect.TypeOf(handler)
	handleMethod, exists := handlerType.MethodByName("Handle")
	if !exists {
		return fmt.Errorf("handler %T does not implement Handle method", handler)
	}

	if handleMethod.Type.NumOut() != 2 { // result + error
		return fmt.Errorf("Handle method must return exactly two values (result and error)")
	}

	queryType := handleMethod.Type.In(1)

	return b.Bus.Register(handler, queryType, validateQueryHandler)
}

// Dispatch sends a query to its appropriate handler and returns the result.
func (b *DefaultQueryBus) Dispatch(query Query) (interface{}, error) {
	if b.IsShuttingDown() {
		return nil, ErrQueryBusShuttingDown
	}

	handler, exists := b.GetHandler(query.Name())
	if !exists {
		return nil, fmt.Errorf("no handler registered for query %s", query.Name())
	}

	b.IncrementActiveCount()
	defer b.DecrementActiveCount()

	handlerValue := reflect.ValueOf(handler)
	handleMethod := handlerValue.MethodByName("Handle")

	results := handleMethod.Call([]reflect.Value{reflect.ValueOf(query)})

	if !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}
