package main

import (
	"fmt"
	"os"

	"github.com/communa/backend/config"
)

func main() {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if err := cfg.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
