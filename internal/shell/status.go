package shell

// Status is the outcome a command handler reports back to the session
// controller.  It is consumed immediately after the handler returns and
// never persisted.
type Status int

const (
	// StatusDone means the command completed and nothing special
	// happens; the prompt is simply redrawn.
	StatusDone Status = iota

	// StatusExit terminates the session after the current iteration.
	StatusExit

	// StatusChdir makes the session re-read the working directory for
	// prompt display.
	StatusChdir

	// StatusPrintCommands makes the session write the name of every
	// registered command, head to tail.
	StatusPrintCommands

	// StatusPrintUsage makes the session write the usage text of the
	// command that was just invoked.
	StatusPrintUsage
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusExit:
		return "exit"
	case StatusChdir:
		return "chdir"
	case StatusPrintCommands:
		return "print-commands"
	case StatusPrintUsage:
		return "print-usage"
	}
	return "done"
}
