package cmd

import (
	"flag"
	"fmt"
	"log"

	"github.com/cartformat/cart"
)

var (
	IDCmd      = flag.NewFlagSet("id", flag.ExitOnError)
	iInputFile = IDCmd.String("input", "", "path to the file to identify")
)

// RunIDCmd reports whether the input is a cart container. The exit status
// makes the answer scriptable: 0 for cart data, 1 for anything else.
func RunIDCmd() int {
	if *iInputFile == "" {
		log.Fatalln("You must specify -input.")
	}

	if cart.IsCartFile(*iInputFile) {
		fmt.Printf("%s: cart container\n", *iInputFile)
		return 0
	}
	fmt.Printf("%s: not a cart container\n", *iInputFile)
	return 1
}
