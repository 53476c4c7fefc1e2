package core

// Logger is the application logger.
// args may hold an error, map[string]interface{} fields and/or the Person the log is about.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the user a log entry relates to.
type Person struct {
	ID       string
	Username string
	Email    string
}
