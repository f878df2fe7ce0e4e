// Command shopstate drives a cart, favorites list and theme preference for a
// profile from the terminal, persisting them through the configured backend.
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "shopstate:", err)
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}
