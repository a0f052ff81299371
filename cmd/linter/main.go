// Command linter запускает анализаторы проекта: exitcheck и putcheck.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/levinOo/rsrc-pool/internal/analyzers/exitcheck"
	"github.com/levinOo/rsrc-pool/internal/analyzers/putcheck"
)

func main() {
	multichecker.Main(
		exitcheck.Analyzer,
		putcheck.Analyzer,
	)
}
