package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	softcosine "github.com/botirk38/softcosine"
	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/types"
	"github.com/botirk38/softcosine/vocab"
)

type queryFlags struct {
	matrix  string
	vocab   string
	corpus  string
	backend string
	top     int
	rebuild bool
	json    bool
}

// queryResult is one ranked document in query output.
type queryResult struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

func newQueryCommand(a *app) *cobra.Command {
	f := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Rank corpus documents against a query",
		Long: `Indexes a corpus (one document per line) and prints the documents most
similar to the query. Persistent backends (sqlite, redis) keep the index between
runs; pass --rebuild after the corpus changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, a, f, args[0])
		},
	}

	cmd.Flags().StringVar(&f.matrix, "matrix", "matrix.json", "matrix file")
	cmd.Flags().StringVar(&f.vocab, "vocab", "vocab.txt", "vocabulary file")
	cmd.Flags().StringVar(&f.corpus, "corpus", "", "corpus file, one document per line")
	cmd.Flags().StringVar(&f.backend, "backend", "", "index backend (memory, sqlite, redis); overrides config")
	cmd.Flags().IntVarP(&f.top, "top", "n", 10, "maximum number of results")
	cmd.Flags().BoolVar(&f.rebuild, "rebuild", false, "discard stored documents and re-index the corpus")
	cmd.Flags().BoolVar(&f.json, "json", false, "output results as JSON")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func runQuery(cmd *cobra.Command, a *app, f *queryFlags, text string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, dict, err := loadModel(f.matrix, f.vocab)
	if err != nil {
		return err
	}
	docs, err := readLines(f.corpus)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	cfg := *a.cfg
	if f.backend != "" {
		cfg.Index.Backend = f.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ix, err := softcosine.New(m, cfg.IndexOptions()...)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer ix.Close()

	if err := syncCorpus(ctx, ix, dict, docs, f.rebuild); err != nil {
		return err
	}

	matches, err := ix.MostSimilar(ctx, vectorize(dict, text), f.top)
	if err != nil {
		return err
	}

	results := make([]queryResult, len(matches))
	for i, match := range matches {
		results[i] = queryResult{Rank: i + 1, Position: match.Position, Score: match.Score, Text: docs[match.Position]}
	}

	if f.json {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No documents indexed.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "  [%d] %.4f  %s\n", r.Rank, r.Score, r.Text)
	}
	return nil
}

// syncCorpus makes sure ix holds exactly docs, appending them to an empty index.
func syncCorpus(ctx context.Context, ix *softcosine.Index, dict *vocab.Dictionary, docs []string, rebuild bool) error {
	n, err := ix.Len(ctx)
	if err != nil {
		return err
	}
	if rebuild && n > 0 {
		if err := ix.Reset(ctx); err != nil {
			return fmt.Errorf("resetting index: %w", err)
		}
		n = 0
	}
	if n == len(docs) && n > 0 {
		logger.Debug("index: reusing %d stored documents", n)
		return nil
	}
	if n != 0 {
		return fmt.Errorf("index holds %d documents but the corpus has %d; use --rebuild", n, len(docs))
	}

	vectors := make([]types.SparseVector, len(docs))
	for i, doc := range docs {
		vectors[i] = vectorize(dict, doc)
	}
	if err := ix.AppendBatch(ctx, vectors); err != nil {
		return fmt.Errorf("indexing corpus: %w", err)
	}
	logger.Debug("index: appended %d documents", len(vectors))
	return nil
}
