package cmd

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cartformat/cart"
)

var (
	UnpackCmd   = flag.NewFlagSet("unpack", flag.ExitOnError)
	uInputFile  = UnpackCmd.String("input", "", "path to the cart file")
	uOutputFile = UnpackCmd.String("output", "", "path to the output file, defaults to <input> without .cart")
	uKey        = UnpackCmd.String("key", "", "obfuscation key as 32 hex digits")
	uConfigFile = UnpackCmd.String("config", "", "path to the yaml config, defaults to ~/.cart.yaml")
)

func RunUnpackCmd() int {
	if *uInputFile == "" {
		log.Fatalln("You must specify -input.")
	}
	outputFile := *uOutputFile
	if outputFile == "" {
		outputFile = strings.TrimSuffix(*uInputFile, ".cart")
		if outputFile == *uInputFile {
			outputFile = *uInputFile + ".uncart"
		}
	}

	conf, err := loadConfig(*uConfigFile)
	if err != nil {
		log.Fatalln(err)
	}
	opts, err := buildOptions(conf, *uKey, "")
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Unpacking %s to %s", *uInputFile, outputFile)
	res, err := cart.UnpackFile(*uInputFile, outputFile, opts)
	if err != nil {
		log.Fatalln("Failed to unpack file:", err)
	}

	if len(res.HeaderJSON) > 0 {
		fmt.Printf("header: %s\n", res.HeaderJSON)
	}
	if len(res.FooterJSON) > 0 {
		fmt.Printf("footer: %s\n", res.FooterJSON)
	}

	log.Println("Done.")
	return 0
}
