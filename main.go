package main

import "github.com/theirongolddev/portsignal/cmd"

func main() {
	cmd.Execute()
}
