// Command grove runs a small demonstration suite for a bounded stack.
//
//	go run ./cmd/grove             # run everything
//	go run ./cmd/grove list        # print the tree with addresses
//	go run ./cmd/grove -r --seed 7 # reproducible random order
//	go run ./cmd/grove serve       # HTTP API on :8080
package main

import (
	"github.com/aretw0/grove"
	"github.com/aretw0/grove/pkg/cli"
)

func main() {
	cli.Execute("grove", define)
}

// define is split from main so the suite can be reused by tests.
func define(s *grove.Suite) {
	declareShared(s)
	declareStack(s)
}
