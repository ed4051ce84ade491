// Command cafememo keeps notes on cafés in a local store.
package main

import "github.com/mesh-intelligence/cafememo/internal/cli"

func main() {
	cli.Execute()
}
