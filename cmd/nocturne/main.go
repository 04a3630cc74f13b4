package main

import (
	"nocturne/cmd/nocturne/cmd"
)

func main() {
	cmd.Execute()
}
