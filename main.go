package main

import "github.com/tkomde/go-qmi8658c/internal/cmd"

func main() {
	cmd.Execute()
}
