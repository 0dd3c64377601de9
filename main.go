// Package main is the entry point for the bopkit CLI.
package main

import "bopkit.dev/pkg/bopkit/cmd"

func main() {
	cmd.Execute()
}
