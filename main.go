package main

import "github.com/jsphweid/keytune/cmd"

func main() {
	cmd.Execute()
}
