package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	softcosine "github.com/botirk38/softcosine"
)

func newScoreCommand(a *app) *cobra.Command {
	var matrixPath, vocabPath string

	cmd := &cobra.Command{
		Use:   "score [text] [text]",
		Short: "Score two texts by soft cosine similarity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, dict, err := loadModel(matrixPath, vocabPath)
			if err != nil {
				return err
			}
			s := softcosine.Score(vectorize(dict, args[0]), vectorize(dict, args[1]), m)
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", s)
			return nil
		},
	}

	cmd.Flags().StringVar(&matrixPath, "matrix", "matrix.json", "matrix file")
	cmd.Flags().StringVar(&vocabPath, "vocab", "vocab.txt", "vocabulary file")
	return cmd
}
