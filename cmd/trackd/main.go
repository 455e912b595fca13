package main

import (
	"fmt"
	"os"

	"github.com/nurturefox/trackd/trackdservice"
)

func main() {
	if err := trackdservice.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
