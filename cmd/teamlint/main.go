// Command teamlint runs the role contract analyzer as a standalone vet tool:
//
//	teamlint ./...
//	go vet -vettool=$(which teamlint) ./...
package main

import (
	"github.com/aretw0/teamwork/pkg/lint"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(lint.Analyzer)
}
