package main

import "legend/api"

func main() {
	api.Main()
}
