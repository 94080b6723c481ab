package main

import "github.com/sinugotshifhiwa4/pw-automation-framework-codebase/cli/cmd"

func main() {
	cmd.Execute()
}
