package main

import "mailscrape/internal/cli"

func main() {
	cli.Execute()
}
