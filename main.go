package main

import "github.com/seedkit-dev/seedkit/cmd"

func main() {
	cmd.Execute()
}
