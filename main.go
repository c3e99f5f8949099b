// ABOUTME: Entry point for news-portal CLI
// ABOUTME: Terminal client for browsing News Portal headlines

package main

import (
	"fmt"
	"os"

	"github.com/sawant8123/news-api-portal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
