package main

import (
	"os"

	"github.com/malbeclabs/ifaceload/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
