// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command bzcat decompresses one or more bzip2 files to stdout,
// mirroring the standard bzcat/zcat convention. With no arguments it
// reads from stdin.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mxmlnkn/bzip2/bzip2"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("bzcat: ")
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return cat(os.Stdin)
	}
	for _, name := range args {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = cat(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %v", name, err)
		}
	}
	return nil
}

func cat(r io.Reader) error {
	d, err := bzip2.NewReader(r, nil)
	if err != nil {
		return err
	}
	_, err = io.Copy(os.Stdout, d)
	return err
}
