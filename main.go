package main

import "github.com/olivia646/spotify-concerts/cmd"

func main() {
	cmd.Execute()
}
