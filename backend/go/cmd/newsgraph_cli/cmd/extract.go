package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"newsgraph/backend/go/internal/pipeline"
	"newsgraph/backend/go/internal/triple"

	"github.com/spf13/cobra"
)

var (
	extractMaxWords int
	extractVerbose  bool
	extractPrompt   bool
	extractTitle    string
	extractDesc     string
)

// extractCmd runs the parser and validator over model output read from stdin,
// without touching any store.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Parse and validate model output from stdin",
	Long: `Reads raw completion text from stdin and prints the triples that would be
written to the graph, one JSON object per line. With --prompt it prints the
extraction prompt for --title and --description instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if extractPrompt {
			_, err := fmt.Fprint(out, pipeline.BuildPrompt(extractTitle, extractDesc))
			return err
		}

		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text := pipeline.CompletionBody(pipeline.BuildPrompt(extractTitle, extractDesc), string(raw))

		accepted, rejected := triple.Extract(triple.Parser{MaxEntityWords: extractMaxWords}, text, "", extractTitle)
		enc := json.NewEncoder(out)
		for _, t := range accepted {
			if err := enc.Encode(t); err != nil {
				return err
			}
		}
		if extractVerbose {
			for _, r := range rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "rejected %v: %v\n", r.Candidate, r.Reason)
			}
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractMaxWords, "max-words", triple.DefaultMaxEntityWords, "maximum words per subject/object")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "print rejected candidates to stderr")
	extractCmd.Flags().BoolVar(&extractPrompt, "prompt", false, "print the extraction prompt and exit")
	extractCmd.Flags().StringVar(&extractTitle, "title", "", "article title")
	extractCmd.Flags().StringVar(&extractDesc, "description", "", "article description")
	rootCmd.AddCommand(extractCmd)
}
