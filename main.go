package main

import "github.com/ekjyotshinh/f1-replay-engine-go/cmd"

func main() {
	cmd.Execute()
}
