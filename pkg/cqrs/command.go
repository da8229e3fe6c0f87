package cqrs

// Command is a marker interface for commands. Commands mutate state and
// return no value beyond an error.
type Command interface {
	NameProvider
}

// CommandHandler handles a specific command type.
type CommandHandler[C Command] interface {
	// Handle executes the command and returns an error if it fails.
	Handle(cmd C) error
}

// CommandBus dispatches commands to their registered handlers.
type CommandBus interface {
	ActionProvider

	// Dispatch sends a command to its registered handler.
	Dispatch(cmd Command) error
}
