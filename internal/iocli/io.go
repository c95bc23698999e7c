// Package iocli abstracts terminal input and output for the command-line tools.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal surface a command needs.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
