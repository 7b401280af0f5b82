package main

import "github.com/fastygo/questify/cmd/questify/root"

func main() {
	root.Execute()
}
