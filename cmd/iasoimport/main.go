package main

import "github.com/aanoble/openhexa-pipelines-iaso/cmd"

func main() {
	cmd.Execute()
}
