package main

// Inspect a binary SAS7BDAT file.  The header, page and subheader
// structure can be listed, and the rows can be written to standard
// output as CSV, one row per line with the row bytes in hex.

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
