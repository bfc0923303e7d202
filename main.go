package main

import "github.com/trendguard/trendguard/cmd"

func main() {
	cmd.Execute()
}
