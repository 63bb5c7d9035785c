// Package main is the entry point for the lumen application.
package main

import (
	"github.com/lumen-cli/lumen/cmd"
	"github.com/lumen-cli/lumen/config"
	"github.com/lumen-cli/lumen/internal/cache"
	"github.com/lumen-cli/lumen/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background cache maintenance.
	go cache.CollectGarbage()

	cmd.Execute()
}
