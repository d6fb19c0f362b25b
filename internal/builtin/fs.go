package builtin

import (
	"fmt"
	"io"
	"os"

	"shelld/internal/shell"
)

const argumentNotSpecified = "argument not specified"

// sizeUnits are the decimal units ls -l prints file sizes in.
var sizeUnits = [...]string{"b", "kb", "Mb", "Gb"}

// InstallFS registers the filesystem command set.  Every path argument
// is resolved against the session working directory.
func InstallFS(reg *shell.Registry) {
	reg.Register(&shell.Command{
		Name: "ls",
		Usage: "prints directory content, relative to the current directory" + shell.Newline +
			"flags:" + shell.Newline +
			"\t-l  print details" + shell.Newline +
			"ls [-l] [relpath]",
		Run: lsCmd,
	})
	reg.Register(&shell.Command{
		Name:  "cd",
		Usage: "changes the current working directory",
		Run:   cdCmd,
	})
	reg.Register(&shell.Command{
		Name: "rm",
		Usage: "removes the specified file(s)" + shell.Newline +
			"rm file [file file ...]",
		Run: rmCmd,
	})
	reg.Register(&shell.Command{
		Name:  "mkdir",
		Usage: "creates the specified directory",
		Run:   mkdirCmd,
	})
	reg.Register(&shell.Command{
		Name: "echo",
		Usage: "add text to new file:" + shell.Newline +
			"\techo 123 > file.txt" + shell.Newline +
			"append text on new line in a file:" + shell.Newline +
			"\techo abc >> file.txt" + shell.Newline +
			"accepts `, ' and \" quotes" + shell.Newline +
			"to preserve quotes:" + shell.Newline +
			"\techo `\"key\": \"value\"` > file.txt",
		Run: echoCmd,
	})
	reg.Register(&shell.Command{
		Name:  "cat",
		Usage: "reads the entire content of a file to the screen",
		Run:   catCmd,
	})
	reg.Register(&shell.Command{
		Name: "mv",
		Usage: "moves/renames a file" + shell.Newline +
			"mv oldname newname",
		Run: mvCmd,
	})
	reg.Register(&shell.Command{
		Name: "cp",
		Usage: "copies a file from one location to another" + shell.Newline +
			"cp file newfile",
		Run: cpCmd,
	})
}

// ── handlers ─────────────────────────────────────────────────────────

func lsCmd(env *shell.Env, args []string) shell.Status {
	long := hasSwitch("-l", args)
	rel := ""
	if p := finalArg(args); p != "" && p != "-l" {
		rel = p
	}

	entries, err := os.ReadDir(env.Dir.Resolve(rel))
	if err != nil {
		fmt.Fprintf(env.Out, "cannot list %s", rel)
		return shell.StatusDone
	}

	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() {
			name += "/"
		}
		if !long {
			fmt.Fprintf(env.Out, "%-16s", name)
			continue
		}

		fmt.Fprintf(env.Out, "%-40s", name)
		if ent.IsDir() {
			fmt.Fprint(env.Out, "-")
		} else if info, err := ent.Info(); err == nil {
			fmt.Fprint(env.Out, formatSize(info.Size()))
		}
		fmt.Fprint(env.Out, shell.Newline)
	}
	return shell.StatusDone
}

func cdCmd(env *shell.Env, args []string) shell.Status {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}

	resolved := env.Dir.Resolve(path)
	if st, err := os.Stat(resolved); err != nil || !st.IsDir() {
		fmt.Fprintf(env.Out, "%s is not a directory", path)
		return shell.StatusDone
	}

	env.Dir.Set(resolved)
	return shell.StatusChdir
}

func rmCmd(env *shell.Env, args []string) shell.Status {
	if len(args) == 0 {
		fmt.Fprint(env.Out, argumentNotSpecified)
		return shell.StatusDone
	}
	for _, arg := range args {
		os.Remove(env.Dir.Resolve(arg)) //nolint:errcheck
	}
	return shell.StatusDone
}

func mkdirCmd(env *shell.Env, args []string) shell.Status {
	dir := finalArg(args)
	if dir == "" {
		fmt.Fprint(env.Out, argumentNotSpecified)
		return shell.StatusDone
	}
	os.Mkdir(env.Dir.Resolve(dir), 0777) //nolint:errcheck
	return shell.StatusDone
}

func echoCmd(env *shell.Env, args []string) shell.Status {
	if len(args) < 3 {
		return shell.StatusPrintUsage
	}
	text, op, filename := args[0], args[1], args[2]

	var flags int
	switch op {
	case ">>":
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ">":
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return shell.StatusPrintUsage
	}

	f, err := os.OpenFile(env.Dir.Resolve(filename), flags, 0644)
	if err != nil {
		fmt.Fprintf(env.Out, "couldnt open %s", filename)
		return shell.StatusDone
	}
	defer f.Close()

	if op == ">>" {
		io.WriteString(f, "\n") //nolint:errcheck
	}
	io.WriteString(f, text) //nolint:errcheck
	return shell.StatusDone
}

func catCmd(env *shell.Env, args []string) shell.Status {
	if len(args) == 0 {
		fmt.Fprint(env.Out, argumentNotSpecified)
		return shell.StatusDone
	}

	f, err := os.Open(env.Dir.Resolve(args[0]))
	if err != nil {
		return shell.StatusDone
	}
	defer f.Close()

	buf := make([]byte, 64)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			env.Out.Write(buf[:n]) //nolint:errcheck
		}
		if err != nil {
			return shell.StatusDone
		}
	}
}

func mvCmd(env *shell.Env, args []string) shell.Status {
	if len(args) < 2 {
		fmt.Fprint(env.Out, argumentNotSpecified)
		return shell.StatusDone
	}
	if err := os.Rename(env.Dir.Resolve(args[0]), env.Dir.Resolve(args[1])); err != nil {
		fmt.Fprint(env.Out, "error moving file")
	}
	return shell.StatusDone
}

func cpCmd(env *shell.Env, args []string) shell.Status {
	if len(args) < 2 {
		fmt.Fprint(env.Out, argumentNotSpecified)
		return shell.StatusDone
	}

	src, err := os.Open(env.Dir.Resolve(args[0]))
	if err != nil {
		fmt.Fprint(env.Out, "couldnt open source file")
		return shell.StatusDone
	}
	defer src.Close()

	dst, err := os.Create(env.Dir.Resolve(args[1]))
	if err != nil {
		fmt.Fprint(env.Out, "couldnt open destination file")
		return shell.StatusDone
	}
	defer dst.Close()

	io.Copy(dst, src) //nolint:errcheck
	return shell.StatusDone
}

// ── helpers ──────────────────────────────────────────────────────────

// hasSwitch reports whether sw appears among args.
func hasSwitch(sw string, args []string) bool {
	for _, a := range args {
		if a == sw {
			return true
		}
	}
	return false
}

// finalArg returns the last argument, or "".
func finalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}

// formatSize renders a byte count with decimal units, matching the
// terse ls -l column format.
func formatSize(n int64) string {
	i := 0
	for n > 1000 && i < len(sizeUnits)-1 {
		n /= 1000
		i++
	}
	return fmt.Sprintf("%d%s", n, sizeUnits[i])
}
