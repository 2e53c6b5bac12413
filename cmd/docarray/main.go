// Command docarray inspects and maintains persisted document collections.
//
// Usage:
//
//	docarray --config docarray.yaml ls
//	docarray --backend bolt --path docs.db --collection books get 0:3#text
//	docarray --backend local --path ./blobs --collection books verify
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
