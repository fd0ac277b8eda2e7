package main

import "github.com/Digital-Shane/posteria/internal/cmd"

func main() {
	cmd.Execute()
}
