// Package cli implements the softcosine command line.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/botirk38/softcosine/config"
	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/matrix"
	"github.com/botirk38/softcosine/types"
	"github.com/botirk38/softcosine/vocab"
)

// app carries state shared by the commands of one invocation.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// NewRootCommand builds the complete command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "softcosine",
		Short: "Soft cosine similarity over term vectors",
		Long: `softcosine builds term similarity matrices from word embeddings and
ranks documents by soft cosine similarity, so that documents sharing no words
but using related words still score as similar.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetVerbose(a.verbose)
			logger.SetOutput(cmd.ErrOrStderr())
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (TOML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newMatrixCommand(a))
	root.AddCommand(newScoreCommand(a))
	root.AddCommand(newQueryCommand(a))
	root.AddCommand(newConfigCommand())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// readLines returns the non-blank lines of path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// loadModel reads a matrix and the dictionary it was built over.
func loadModel(matrixPath, vocabPath string) (*matrix.Matrix, *vocab.Dictionary, error) {
	m, err := matrix.LoadFile(matrixPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading matrix: %w", err)
	}

	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()
	dict, err := vocab.Load(f)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vocabulary: %w", err)
	}

	if dict.Len() != m.Size() {
		return nil, nil, fmt.Errorf("%w: vocabulary has %d terms, matrix has %d",
			types.ErrDimensionMismatch, dict.Len(), m.Size())
	}
	return m, dict, nil
}

func vectorize(dict *vocab.Dictionary, text string) types.SparseVector {
	return dict.Doc2Bow(vocab.Tokenize(text))
}
