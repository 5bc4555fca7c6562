package main

import "github.com/KarlovS28/dela/cmd"

func main() {
	cmd.Execute()
}
