package main

import "github.com/lepinkainen/nyanko/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
