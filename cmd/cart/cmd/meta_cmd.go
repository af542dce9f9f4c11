package cmd

import (
	"flag"
	"fmt"
	"log"

	"github.com/cartformat/cart"
)

var (
	MetaCmd     = flag.NewFlagSet("meta", flag.ExitOnError)
	mInputFile  = MetaCmd.String("input", "", "path to the cart file")
	mKey        = MetaCmd.String("key", "", "obfuscation key as 32 hex digits")
	mConfigFile = MetaCmd.String("config", "", "path to the yaml config, defaults to ~/.cart.yaml")
)

func RunMetaCmd() int {
	if *mInputFile == "" {
		log.Fatalln("You must specify -input.")
	}

	conf, err := loadConfig(*mConfigFile)
	if err != nil {
		log.Fatalln(err)
	}
	opts, err := buildOptions(conf, *mKey, "")
	if err != nil {
		log.Fatalln(err)
	}

	res, err := cart.GetFileMetadataOnly(*mInputFile, opts)
	if err != nil {
		log.Fatalln("Failed to read metadata:", err)
	}

	if len(res.HeaderJSON) > 0 {
		fmt.Printf("header: %s\n", res.HeaderJSON)
	}
	if len(res.FooterJSON) > 0 {
		fmt.Printf("footer: %s\n", res.FooterJSON)
	}
	return 0
}
