package main

import (
	"github.com/maxsid/siteauth/cmd"
)

func main() {
	cmd.Execute()
}
