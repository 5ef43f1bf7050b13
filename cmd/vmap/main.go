// Package main provides the vmap CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/born-ml/vmap/vmap"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("vmap %s\n", version)
			return
		case "ops":
			ops := vmap.Ops()
			sort.Strings(ops)
			for _, op := range ops {
				fmt.Println(op)
			}
			return
		}
	}

	fmt.Println("vmap - batching rules for indexing and scatter/gather ops")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  ops        List ops with registered batching rules")
}
