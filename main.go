package main

import "github.com/ShawnMa123/manage-my-service-subscription/cmd"

func main() {
	cmd.Execute()
}
