package main

import "github.com/zfogg/pageshare/internal/cmd"

func main() {
	cmd.Execute()
}
