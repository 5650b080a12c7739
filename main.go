// SPDX-License-Identifier: MPL-2.0

// Command buildconv evaluates convention-based build policy for a
// multi-module workspace.
package main

import cmd "github.com/additionalbeans/buildconv/cmd/buildconv"

func main() {
	cmd.Execute()
}
