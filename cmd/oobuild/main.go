package main

import "github.com/openal-orbis/oobuild/cmd/oobuild/internal"

func main() {
	internal.Execute()
}
