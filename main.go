package main

import "github.com/chukul/cloudtop/cmd"

func main() {
	cmd.Execute()
}
