package main

import (
	"github.com/notargets/defelement/cmd"
	_ "github.com/notargets/defelement/implementations/ciarlet"
	_ "github.com/notargets/defelement/implementations/python"
)

func main() {
	cmd.Execute()
}
