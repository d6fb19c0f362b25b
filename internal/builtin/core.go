// Package builtin holds the command sets a shelld server registers by
// default: the core commands every server carries and the filesystem
// commands that operate on the session working directory.
package builtin

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"shelld/internal/shell"
)

// InstallCore registers the core command set.
func InstallCore(reg *shell.Registry) {
	reg.Register(&shell.Command{
		Name:  "help",
		Usage: "lists all available commands",
		Run: func(env *shell.Env, args []string) shell.Status {
			return shell.StatusPrintCommands
		},
	})
	reg.Register(&shell.Command{
		Name:  "exit",
		Usage: "closes the shell session",
		Run: func(env *shell.Env, args []string) shell.Status {
			return shell.StatusExit
		},
	})
	reg.Register(&shell.Command{
		Name:  "date",
		Usage: "prints the current date and time",
		Run: func(env *shell.Env, args []string) shell.Status {
			fmt.Fprint(env.Out, time.Now().Format(time.ANSIC))
			return shell.StatusDone
		},
	})
	reg.Register(&shell.Command{
		Name:  "uname",
		Usage: "prints system information",
		Run: func(env *shell.Env, args []string) shell.Status {
			fmt.Fprintf(env.Out, "shelld %s/%s %s",
				runtime.GOOS, runtime.GOARCH, runtime.Version())
			return shell.StatusDone
		},
	})
	reg.Register(&shell.Command{
		Name:  "stats",
		Usage: "prints server runtime statistics",
		Run: func(env *shell.Env, args []string) shell.Status {
			// The JSON snapshot is LF-separated; the terminal runs in
			// raw mode and needs CRLF.
			out := strings.ReplaceAll(env.Metrics.JSON(), "\n", shell.Newline)
			fmt.Fprint(env.Out, out)
			return shell.StatusDone
		},
	})
}
