package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/botirk38/softcosine/config"
	"github.com/botirk38/softcosine/embeddings"
	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/matrix"
	"github.com/botirk38/softcosine/providers"
	"github.com/botirk38/softcosine/types"
	"github.com/botirk38/softcosine/vocab"
)

type matrixBuildFlags struct {
	corpus     string
	embeddings string
	provider   string
	out        string
	vocabOut   string
}

func newMatrixCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Build and inspect term similarity matrices",
	}
	cmd.AddCommand(newMatrixBuildCommand(a))
	return cmd
}

func newMatrixBuildCommand(a *app) *cobra.Command {
	f := &matrixBuildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a term similarity matrix for a corpus",
		Long: `Builds the vocabulary of a corpus (one document per line) and a sparse term
similarity matrix from word embeddings. Embeddings come from a word2vec text file
given with --embeddings, or from the configured embedding provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrixBuild(cmd, a, f)
		},
	}

	cmd.Flags().StringVar(&f.corpus, "corpus", "", "corpus file, one document per line")
	cmd.Flags().StringVar(&f.embeddings, "embeddings", "", "word2vec text file")
	cmd.Flags().StringVar(&f.provider, "provider", "", "embedding provider (openai, gemini); overrides config")
	cmd.Flags().StringVarP(&f.out, "out", "o", "matrix.json", "matrix output file")
	cmd.Flags().StringVar(&f.vocabOut, "vocab-out", "vocab.txt", "vocabulary output file")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func runMatrixBuild(cmd *cobra.Command, a *app, f *matrixBuildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := readLines(f.corpus)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = vocab.Tokenize(doc)
	}
	dict := vocab.FromDocuments(tokenized)
	if dict.Len() == 0 {
		return fmt.Errorf("%w: corpus %s has no terms", types.ErrConfiguration, f.corpus)
	}
	logger.Section("Vocabulary")
	logger.Info("vocabulary: %d terms from %d documents", dict.Len(), len(docs))

	logger.Section("Embeddings")
	lookup, err := loadEmbeddings(ctx, a, f, dict)
	if err != nil {
		return err
	}
	if covered := coverage(dict, lookup); covered == 0 {
		logger.Warn("no vocabulary term has an embedding; the matrix will be the identity")
	} else {
		logger.Info("embeddings: %d of %d terms covered", covered, dict.Len())
	}

	opts := a.cfg.MatrixOptions()
	if a.cfg.Matrix.Weighting == config.WeightingIDF {
		opts = append(opts, matrix.WithTermWeights(dict.IDF()))
	}
	opts = append(opts, matrix.WithProgress(func(done, total int) {
		if done == total || done%1000 == 0 {
			logger.Debug("matrix: %d/%d terms", done, total)
		}
	}))

	logger.Section("Matrix")
	m, err := matrix.Build(ctx, dict, lookup, opts...)
	if err != nil {
		return fmt.Errorf("building matrix: %w", err)
	}

	if err := m.SaveFile(f.out); err != nil {
		return fmt.Errorf("saving matrix: %w", err)
	}
	out, err := os.Create(f.vocabOut)
	if err != nil {
		return fmt.Errorf("creating vocabulary file: %w", err)
	}
	if err := dict.Save(out); err != nil {
		out.Close()
		return fmt.Errorf("saving vocabulary: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built matrix: %d terms, %d nonzero entries, longest row %d\n",
		m.Size(), m.NonzeroCount(), m.MaxRowLen())
	fmt.Fprintf(cmd.OutOrStdout(), "  matrix:     %s\n  vocabulary: %s\n", f.out, f.vocabOut)
	return nil
}

func loadEmbeddings(ctx context.Context, a *app, f *matrixBuildFlags, dict *vocab.Dictionary) (types.EmbeddingLookup, error) {
	if f.embeddings != "" {
		file, err := os.Open(f.embeddings)
		if err != nil {
			return nil, fmt.Errorf("opening embeddings: %w", err)
		}
		defer file.Close()
		table, err := embeddings.LoadWord2Vec(file)
		if err != nil {
			return nil, fmt.Errorf("loading embeddings: %w", err)
		}
		logger.Info("embeddings: %d vectors of dimension %d", table.Len(), table.Dim())
		return table, nil
	}

	pc := a.cfg.Provider
	providerType := types.ProviderType(pc.Type)
	if f.provider != "" {
		providerType = types.ProviderType(f.provider)
	}
	provider, counter, err := providers.NewProvider(ctx, providerType, providers.Config{
		APIKey:            pc.APIKey,
		BaseURL:           pc.BaseURL,
		Model:             pc.Model,
		RequestsPerSecond: pc.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	terms := make([]string, dict.Len())
	for id := range terms {
		terms[id], _ = dict.Term(id)
	}
	logger.Info("embeddings: requesting %d terms from %s", len(terms), providerType)
	return embeddings.FromProvider(ctx, provider, terms, embeddings.BatchConfig{
		MaxBatchSize:   pc.MaxBatchSize,
		MaxBatchTokens: pc.MaxBatchTokens,
		Counter:        counter,
	})
}

func coverage(dict *vocab.Dictionary, lookup types.EmbeddingLookup) int {
	n := 0
	for id := 0; id < dict.Len(); id++ {
		term, _ := dict.Term(id)
		if _, ok := lookup.Lookup(term); ok {
			n++
		}
	}
	return n
}
