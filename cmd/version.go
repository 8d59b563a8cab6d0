package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/content"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("linguo", version)
		fmt.Printf("content packs: %s.x\n", content.SupportedMajor)
	},
}
