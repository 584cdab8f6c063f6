// Package main is the entry point for the storylist CLI.
package main

import "storylist.dev/pkg/storylist/cmd"

func main() {
	cmd.Execute()
}
