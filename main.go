// SPDX-License-Identifier: MPL-2.0

package main

import cmd "asrenv-cli/cmd/asrenv"

func main() {
	cmd.Execute()
}
