package cmd

import (
	"flag"
	"log"
	"os"

	"github.com/mitchellh/ioprogress"

	"github.com/cartformat/cart"
)

var (
	PackCmd         = flag.NewFlagSet("pack", flag.ExitOnError)
	pInputFile      = PackCmd.String("input", "", "path to the input file")
	pOutputFile     = PackCmd.String("output", "", "path to the output file, defaults to <input>.cart")
	pMeta           = PackCmd.String("meta", "", "header metadata as an inline json object")
	pKey            = PackCmd.String("key", "", "obfuscation key as 32 hex digits")
	pCompression    = PackCmd.String("compression", "", "compression mode: zlib, none or zstd")
	pConfigFile     = PackCmd.String("config", "", "path to the yaml config, defaults to ~/.cart.yaml")
)

func RunPackCmd() int {
	if *pInputFile == "" {
		log.Fatalln("You must specify -input.")
	}
	outputFile := *pOutputFile
	if outputFile == "" {
		outputFile = *pInputFile + ".cart"
	}

	conf, err := loadConfig(*pConfigFile)
	if err != nil {
		log.Fatalln(err)
	}
	opts, err := buildOptions(conf, *pKey, *pCompression)
	if err != nil {
		log.Fatalln(err)
	}
	headerJSON, err := mergeHeaderMeta(conf, *pMeta)
	if err != nil {
		log.Fatalln(err)
	}

	input, err := os.Open(*pInputFile)
	if err != nil {
		log.Fatalln("Failed to open input file:", err)
	}
	defer input.Close()
	stat, err := input.Stat()
	if err != nil {
		log.Fatalln("Failed to stat input file:", err)
	}
	progress := &ioprogress.Reader{
		Reader:   input,
		Size:     stat.Size(),
		DrawFunc: ioprogress.DrawTerminalf(os.Stderr, ioprogress.DrawTextFormatBytes),
	}

	output, err := os.Create(outputFile)
	if err != nil {
		log.Fatalln("Failed to create output file:", err)
	}
	defer output.Close()

	log.Printf("Packing %s to %s", *pInputFile, outputFile)
	if err := cart.PackStream(progress, output, headerJSON, opts); err != nil {
		log.Fatalln("Failed to pack file:", err)
	}

	log.Println("Done.")
	return 0
}
