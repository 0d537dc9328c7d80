package main

import (
	"os"

	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
	cli "github.com/viant/datacrew/cmd/datacrew"
)

var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Run(os.Args[1:])
}
