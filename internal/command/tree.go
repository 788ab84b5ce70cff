package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/example/fetch"
	"github.com/joeycumines/decisioncore/internal/tree"
	"github.com/joeycumines/decisioncore/internal/treedoc"
)

func newTreeCommand(a *app) *cobra.Command {
	var (
		scriptPath string
		strategies bool
	)
	cmd := &cobra.Command{
		Use:   "tree [document]",
		Short: "Print the dog's behaviour tree",
		Long: `Print the built-in dog tree, or build and print a tree document, reporting
any node the document gets wrong. A document defaults to tree.path from the
configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if strategies {
				reg := treedoc.NewRegistry()
				fetch.NewDog(fetch.NewWorld(0), blackboard.New()).Register(reg)
				_, err := fmt.Fprintln(out, strings.Join(reg.Names(), "\n"))
				return err
			}

			path := a.cfg.Tree.Path
			if len(args) == 1 {
				path = args[0]
			}
			if !cmd.Flags().Changed("script") {
				scriptPath = a.cfg.Tree.Script
			}
			src, err := loadTreeSource(path, scriptPath, nil)
			if err != nil {
				return err
			}
			d, err := a.spawn("dog", a.cfg.Sim.Seed, src)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, tree.Format(d.agent.Tree()))
			return err
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "JavaScript file resolving the document's script nodes")
	cmd.Flags().BoolVar(&strategies, "strategies", false, "list the strategies documents can name")
	return cmd
}
