package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"envforge/internal/cli"
)

//go:embed templates
var templatesFS embed.FS

func main() {
	templates, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(templates); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
