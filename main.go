package main

import (
	"os"

	"mkvnmp4/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
