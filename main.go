package main

import "github.com/Mohsinsiddi/dmint/cmd"

func main() {
	cmd.Execute()
}
