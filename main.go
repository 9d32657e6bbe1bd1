// main is the entry point of the fragility CLI.
package main

import (
	"github.com/huangsam/fragility/cmd"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Error running fragility", err)
	}
}
