package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCountCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "count [file...]",
		Short: "Count the tokens in files (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			tc, err := newChunker(v, newLogger(v, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer tc.Close()

			n, err := tc.CountTokens(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
