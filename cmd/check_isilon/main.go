package main

import (
	"context"
	"os"

	"github.com/consol-monitoring/check_isilon/pkg/checkisilon"
)

func main() {
	os.Exit(checkisilon.Check(context.Background(), os.Stdout, os.Args[1:]))
}
