package main

import "pulse-rate-monitor/internal/cli"

func main() {
	cli.Execute()
}
