// The main package for the drawfeed executable.
package main

import (
	"github.com/drawfeed/drawfeed/cmd"
)

func main() {
	cmd.Execute()
}
