package main

import (
	"os"

	"github.com/tracknfresh/tracknfresh-web/webapp"
)

func main() {
	if err := webapp.Run(); err != nil {
		os.Exit(1)
	}
}
