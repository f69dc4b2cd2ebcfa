package main

import "github.com/Norgate-AV/fsstage/cmd"

func main() {
	cmd.Execute()
}
