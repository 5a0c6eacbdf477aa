package main

import (
	"github.com/jordan-castro/pixelscript-tools/cmd"
)

func main() {
	cmd.Execute()
}
