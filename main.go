package main

import (
	"os"

	"github.com/htol/bookshelf/app"
)

func main() {
	os.Exit(app.CLI(os.Args[1:]))
}
