// Command surrogo fits surrogate models to experimental data and queries
// their posterior.
//
//	surrogo fit     --config surrogo.yaml --data measurements.csv [--save]
//	surrogo predict --config surrogo.yaml --data measurements.csv --candidates candidates.csv
//	surrogo score   --config surrogo.yaml --data measurements.csv
//	surrogo plot    --function sine --points 5 --out posterior.png
//	surrogo list    --config surrogo.yaml
package main

import (
	"os"

	"github.com/ezoic/surrogo/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.LogError(err, "surrogo failed")
		os.Exit(1)
	}
}
