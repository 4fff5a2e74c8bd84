package main

import (
	"github.com/0xERR0R/argus/cmd"
)

func main() {
	cmd.Execute()
}
