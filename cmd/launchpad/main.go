// Command launchpad serves and inspects the launchpad wellness endpoints.
package main

import "github.com/mesh-intelligence/launchpad/internal/cli"

func main() {
	cli.Execute()
}
