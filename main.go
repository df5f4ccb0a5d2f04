package main

import "github.com/drkstar360/Gmail-API-Async-Agent/cmd"

// version is stamped by the release build via ldflags.
var version = "dev"

func main() {
	cmd.Execute(version)
}
