// ./main.go
package main

import (
	"github.com/Oktaliem/ragproof/cmd"
)

func main() {
	cmd.Execute()
}
