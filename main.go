package main

import (
	"context"

	"procurement/cmd"
)

func main() {
	cmd.Execute(context.Background())
}
