package main

import "faulttree/fta/cmd"

func main() {
	cmd.Execute()
}
