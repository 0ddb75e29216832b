package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		bad.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
