package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	apierrors "apiscan/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printSuggestedFixes(os.Stderr, err)
		os.Exit(1)
	}
}

// printSuggestedFixes lists the fixes attached to an apiscan error, if any.
func printSuggestedFixes(w io.Writer, err error) {
	var ae *apierrors.ApiscanError
	if !errors.As(err, &ae) || len(ae.SuggestedFixes) == 0 {
		return
	}
	fmt.Fprintln(w, "Suggested fixes:")
	for _, fix := range ae.SuggestedFixes {
		fmt.Fprintf(w, "  - %s\n", fix.Description)
		switch fix.Type {
		case apierrors.RunCommand:
			fmt.Fprintf(w, "    $ %s\n", fix.Command)
		case apierrors.CheckPath:
			if fix.Path != "" {
				fmt.Fprintf(w, "    %s\n", fix.Path)
			}
		}
	}
}
