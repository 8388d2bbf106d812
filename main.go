package main

import "socialgraph/cmd"

func main() {
	cmd.Execute()
}
