// File: main.go
package main

import (
	"flag"
	"log"
)

func main() {
	cfg := DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if _, err := runAnalysis(cfg); err != nil {
		log.Fatal(err)
	}
	if cfg.Show {
		if err := showImage(cfg.Output); err != nil {
			log.Printf("WARN: cannot open viewer: %v", err)
		}
	}
}
