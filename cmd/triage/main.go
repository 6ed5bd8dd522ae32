package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/triage/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
