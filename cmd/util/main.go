package main

import (
	"github.com/onflow/flow-vmext/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}
