package domain

// Command is one external process invocation.
// Every input is explicit: nothing is inherited from the harness's working directory.
type Command struct {
	// Name labels the command in logs and spans.
	Name string
	Args []string
	Dir  string
	Env  map[string]string
	// Stream runs the command under a pseudo terminal and mirrors its output line by line.
	// Captured commands keep stdout and stderr apart so stdout can be parsed.
	Stream bool
}
