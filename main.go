package main

import (
	"github.com/maxgio92/perf-class/pkg/cmd"
)

func main() {
	cmd.Execute()
}
