package main

import "github.com/iksnae/anybot/cmd"

func main() {
	cmd.Execute()
}
