package main

import "github.com/opiniontrade/clob-go/cmd"

func main() {
	cmd.Execute()
}
