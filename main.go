// Entrypoint that delegates to the Cobra root command in cmd/root.go.

package main

import (
	"github.com/smpl-go/smpl/cmd"
)

func main() {
	cmd.Execute()
}
