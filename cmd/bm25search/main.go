// Command bm25search is the optional CLI front-end: it wires
// Processor.Open/Search to a cobra command surface.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vasth/bm25engine/internal/pathutil"
	"github.com/vasth/bm25engine/internal/query"
)

type rootFlags struct {
	corpus         string
	indexPath      string
	lexiconPath    string
	pageTablePath  string
	docLengthsPath string
	topK           int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "bm25search",
		Short: "BM25 DAAT retrieval engine CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolvePaths(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.corpus, "corpus", "", "base path for the corpus' four sidecar files (name.idx, name.lex, name.pages, name.doclen); overridden by any of the flags below")
	root.PersistentFlags().StringVar(&flags.indexPath, "index", "", "path to the index file")
	root.PersistentFlags().StringVar(&flags.lexiconPath, "lexicon", "", "path to the lexicon file")
	root.PersistentFlags().StringVar(&flags.pageTablePath, "page-table", "", "path to the page table file")
	root.PersistentFlags().StringVar(&flags.docLengthsPath, "doc-lengths", "", "path to the doc-lengths file")
	root.PersistentFlags().IntVar(&flags.topK, "top-k", 10, "number of ranked results to return")

	root.AddCommand(newQueryCmd(flags), newReplCmd(flags))
	return root
}

// resolvePaths fills in any of the four path flags left empty from
// --corpus via pathutil.DefaultPaths, then requires all four to be set one
// way or the other.
func resolvePaths(flags *rootFlags) error {
	if flags.corpus != "" {
		idx, lex, pages, doclen := pathutil.DefaultPaths(flags.corpus)
		if flags.indexPath == "" {
			flags.indexPath = idx
		}
		if flags.lexiconPath == "" {
			flags.lexiconPath = lex
		}
		if flags.pageTablePath == "" {
			flags.pageTablePath = pages
		}
		if flags.docLengthsPath == "" {
			flags.docLengthsPath = doclen
		}
	}

	if flags.indexPath == "" || flags.lexiconPath == "" || flags.pageTablePath == "" || flags.docLengthsPath == "" {
		return fmt.Errorf("must set --corpus or all four of --index/--lexicon/--page-table/--doc-lengths")
	}
	return nil
}

func openProcessor(flags *rootFlags) (*query.Processor, error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return query.Open(flags.indexPath, flags.lexiconPath, flags.pageTablePath, flags.docLengthsPath,
		query.WithLogger(log),
		query.WithConfig(query.Config{K1: 1.5, B: 0.75, TopK: flags.topK}),
	)
}

func newQueryCmd(flags *rootFlags) *cobra.Command {
	var modeStr string
	cmd := &cobra.Command{
		Use:   "query [terms...]",
		Short: "run one query and print ranked results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := query.ParseMode(modeStr)
			if !ok {
				return fmt.Errorf("invalid mode %q, expected AND or OR", modeStr)
			}

			p, err := openProcessor(flags)
			if err != nil {
				return err
			}
			defer p.Close()

			raw := strings.Join(args, " ")
			res, err := p.Search(cmd.Context(), raw, mode, flags.topK)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&modeStr, "mode", "OR", "AND or OR")
	return cmd
}

// newReplCmd implements an interactive stdin prompt loop: a query line, a
// mode line, and the "exit" terminator.
func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive query\\nmode\\n prompt loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcessor(flags)
			if err != nil {
				return err
			}
			defer p.Close()

			return runRepl(cmd.Context(), p, cmd.InOrStdin(), cmd.OutOrStdout(), flags.topK)
		},
	}
}

func runRepl(ctx context.Context, p *query.Processor, in io.Reader, out io.Writer, topK int) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "query> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		if line == "exit" {
			return nil
		}

		if !scanner.Scan() {
			return nil
		}
		modeLine := scanner.Text()
		mode, ok := query.ParseMode(modeLine)
		if !ok {
			fmt.Fprintf(out, "invalid mode %q, expected AND or OR\n", modeLine)
			continue
		}

		res, err := p.Search(ctx, line, mode, topK)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		printResult(out, res)
	}
}

func printResult(out io.Writer, res query.Result) {
	for i, hit := range res.Hits {
		fmt.Fprintf(out, "%d. DocID: %d, DocName: %s, Score: %v\n", i+1, hit.DocID, hit.DocName, hit.Score)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
