// shelld - a network shell daemon with line editing and history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shelld/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shelld: %v\n", err)
		os.Exit(1)
	}
}
