package main

import (
	"github.com/dmarrick/novaforge/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
