package core

// Logger is any service that can report app events and errors.
// args may carry extra context (request data, the acting user, ...).
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
}
