package main

import (
	"os"

	"github.com/m-ld/m-ld-iroha/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
