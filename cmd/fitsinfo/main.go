// Diagnostic tool for listing the structure of FITS files
package main

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-fits/fits"
)

func main() {
	args := os.Args[1:]
	verbose := false
	if len(args) > 0 && args[0] == "-v" {
		verbose = true
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Println("Usage: fitsinfo [-v] <file.fits>")
		os.Exit(1)
	}

	filename := args[0]
	f, err := fits.Open(filename)
	if err != nil {
		fmt.Printf("ERROR: failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("=== %s: %d HDU(s) ===\n\n", filename, f.HDUCount())

	err = f.Walk(func(h *fits.HDU) error {
		name := h.Name()
		if name == "" {
			name = "(unnamed)"
		}
		kind, err := h.Kind()
		if err != nil {
			fmt.Printf("HDU %d %s: %v\n", h.Index(), name, err)
			return nil
		}
		switch kind {
		case fits.KindImage:
			img, err := h.AsImage()
			if err != nil {
				return err
			}
			shape, err := img.ReadShape()
			if err != nil {
				fmt.Printf("HDU %d  Image     %s: %v\n", h.Index(), name, err)
				return nil
			}
			fmt.Printf("HDU %d  Image     %s  shape=%v\n", h.Index(), name, shape)
		case fits.KindBintable:
			tbl, err := h.AsBintable()
			if err != nil {
				return err
			}
			rows, err := tbl.RowCount()
			if err != nil {
				fmt.Printf("HDU %d  Bintable  %s: %v\n", h.Index(), name, err)
				return nil
			}
			names, err := tbl.Names()
			if err != nil {
				return err
			}
			fmt.Printf("HDU %d  Bintable  %s  rows=%d  columns=%v\n", h.Index(), name, rows, names)
		}
		if verbose {
			text, err := h.Header().Text()
			if err != nil {
				return err
			}
			fmt.Println(text)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
