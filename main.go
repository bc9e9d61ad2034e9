// Package main is the entry point for the glide CLI.
package main

import "glide.dev/pkg/glide/cmd"

func main() {
	cmd.Execute()
}
