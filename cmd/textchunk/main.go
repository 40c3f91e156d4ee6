// cmd/textchunk/main.go
package main

import (
	cli "github.com/botirk38/textchunker/internal/cli"
)

// main runs the textchunk command line tool.
func main() {
	cli.Execute()
}
