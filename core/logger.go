package core

// Logger logs messages.
// args may carry errors, map[string]interface{} fields and the member on whose behalf the action ran.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
