// slalog - SLA breach detection for access logs
//
// slalog reads web server access logs and reports the time windows during
// which availability fell below an SLA threshold.
package main

import (
	"os"

	"github.com/b1rdex/slalog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
