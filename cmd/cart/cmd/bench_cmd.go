package cmd

import (
	"bytes"
	"flag"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cartformat/cart"
	"github.com/cartformat/cart/compress"
	"github.com/cartformat/cart/util"
)

var (
	BenchCmd     = flag.NewFlagSet("bench", flag.ExitOnError)
	bThreads     = BenchCmd.Int("threads", 1, "number of threads")
	bInputSize   = BenchCmd.Int("input-size", 10*1024*1024, "size of input file")
	bCompression = BenchCmd.String("compression", "zlib", "compression mode: zlib, none or zstd")
)

func RunBenchCmd() int {
	mode, err := compress.ParseMode(*bCompression)
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Running benchmark with %s compression and %d threads", mode, *bThreads)

	runBench := func(seed int64) (time.Duration, error) {
		input := util.NewRandomReader(int64(*bInputSize), seed)
		opts := &cart.Options{Compression: mode}

		startTime := time.Now()

		packed := &bytes.Buffer{}
		if err := cart.Pack(input, packed, nil, nil, opts); err != nil {
			return 0, err
		}
		if _, err := cart.Unpack(bytes.NewReader(packed.Bytes()), io.Discard, opts); err != nil {
			return 0, err
		}

		return time.Since(startTime), nil
	}

	// Run the benchmark for each thread
	var durations []time.Duration
	var lock sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < *bThreads; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			duration, err := runBench(seed)
			if err != nil {
				log.Printf("Error running benchmark: %v", err)
				return
			}
			lock.Lock()
			durations = append(durations, duration)
			lock.Unlock()
		}(int64(i))
	}

	// Wait for all the threads to finish
	wg.Wait()

	if len(durations) == 0 {
		log.Fatalln("All benchmark runs failed")
	}

	// Report the results
	var totalDuration time.Duration
	for _, duration := range durations {
		totalDuration += duration
	}
	averageDuration := totalDuration / time.Duration(len(durations))

	// A run is a pack plus an unpack of the same payload
	speed := int64(2 * float64(*bInputSize) * float64(len(durations)) / totalDuration.Seconds())
	log.Printf("Average duration: %v, speed: %s/s", averageDuration, util.FormatSize(speed))

	return 0
}
