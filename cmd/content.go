package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Validate and import content packs",
}

var contentImportCmd = &cobra.Command{
	Use:   "import [pack.json]",
	Short: "Import a content pack (or a built-in pack with --builtin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPack(cmd, args)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sum, err := content.Import(cmd.Context(), st.ContentRepo(), p)
		if err != nil {
			return fmt.Errorf("import pack: %w", err)
		}

		fmt.Printf("Imported %s pack %s: %d concepts, %d skills, %d prerequisites, %d questions\n",
			sum.Language, p.Version, sum.Concepts, sum.Skills, sum.Prerequisites, sum.Questions)
		for _, w := range sum.Warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate [pack.json]",
	Short: "Check a content pack without importing it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPack(cmd, args)
		if err != nil {
			return err
		}
		warnings, err := content.Check(p)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		fmt.Printf("%s pack %s is valid (%d skills, %d questions)\n",
			p.Language.Code, p.Version, len(p.Skills), len(p.Questions))
		return nil
	},
}

// loadPack reads the pack named by the single argument or by --builtin.
func loadPack(cmd *cobra.Command, args []string) (*content.Pack, error) {
	code, _ := cmd.Flags().GetString("builtin")
	switch {
	case code != "" && len(args) > 0:
		return nil, fmt.Errorf("use a pack file or --builtin, not both")
	case code != "":
		return content.Builtin(code)
	case len(args) == 1:
		return content.LoadFile(args[0])
	default:
		return nil, fmt.Errorf("no pack given; built-in packs: %s", strings.Join(content.BuiltinCodes(), ", "))
	}
}

func init() {
	for _, c := range []*cobra.Command{contentImportCmd, contentValidateCmd} {
		c.Flags().String("builtin", "", "Use an embedded starter pack by language code (e.g. es)")
		contentCmd.AddCommand(c)
	}
}
