package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/phillip-england/leavedesk/internal/leavedeskcli"
)

func main() {
	if err := leavedeskcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, leavedeskcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			leavedeskcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
