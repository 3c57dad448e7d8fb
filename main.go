package main

import "video-trimmer/cmd"

func main() {
	cmd.Execute()
}
