package main

import "github.com/BlurryBat/photo-matcher/cmd"

func main() {
	cmd.Execute()
}
