package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/ats"
	"atsmatch/internal/common"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

func newKeywordsCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "keywords [file]",
		Short: "List the keywords extracted from a resume or job description",
		Long: `List up to 50 keywords extracted from a text, most frequent first, together
with its keyword density. Known multi-word skills such as "machine learning"
and compound tokens such as "node.js" are included.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			createInput := func(sources []textsource.Source) (textsource.Source, error) {
				if len(sources) != 1 {
					return textsource.Source{}, fmt.Errorf("expected 1 file path, got %d", len(sources))
				}
				return sources[0], nil
			}

			extract := func(_ context.Context, src textsource.Source) (types.KeywordsOutput, error) {
				return types.KeywordsOutput{
					Source:   src.FileName,
					Keywords: ats.ExtractKeywords(src.Text),
					Density:  ats.CalculateKeywordDensity(src.Text),
				}, nil
			}

			return common.RunFileCommand(cmd.Context(), a.runner, cc, args, createInput, extract, nil)
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}
