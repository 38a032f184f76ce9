package main

import (
	"os"

	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

func main() {
	log.Setup(os.Getenv("LOG_LEVEL"))

	if err := newRootCmd().Execute(); err != nil {
		log.L.Error(err)
		os.Exit(1)
	}
}
