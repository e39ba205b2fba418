package main

import (
	"context"
	_ "embed"
	"os"

	"github.com/dejay09121/Noteapp/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	if err := cmd.Execute(context.Background(), c); err != nil {
		os.Exit(1)
	}
}
