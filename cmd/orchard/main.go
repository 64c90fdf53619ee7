// Command orchard manages a fruit catalog from the command line and serves
// it over HTTP.
package main

import "github.com/mesh-intelligence/orchard/internal/cli"

func main() {
	cli.Execute()
}
