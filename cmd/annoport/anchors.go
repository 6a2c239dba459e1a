package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/docuflow/annoport/internal/anchor"
	"github.com/docuflow/annoport/internal/api"
	"github.com/docuflow/annoport/internal/engine"
)

type anchorRow struct {
	ID   string  `json:"id" yaml:"id"`
	Page int     `json:"page" yaml:"page"`
	Rank int     `json:"rank" yaml:"rank"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

var anchorsCmd = &cobra.Command{
	Use:   "anchors <file.pdf>",
	Short: "List the anchor tokens found in a document",
	Long: `List every anchor token in the document, in reading order. Useful for
checking that both layouts carry the labels a transfer would rely on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		doc, err := engine.OpenPDF(args[0])
		if err != nil {
			logger.Error("cannot open document", "error", err)
			return err
		}
		defer doc.Close()

		extractor, err := anchor.NewExtractor(cfg.AnchorPattern, logger)
		if err != nil {
			return err
		}

		tokens := extractor.Extract(doc)
		rows := make([]anchorRow, 0, len(tokens))
		for _, tok := range tokens {
			rows = append(rows, anchorRow{
				ID:   tok.ID,
				Page: tok.Page + 1,
				Rank: tok.Rank,
				X:    tok.Center.X,
				Y:    tok.Center.Y,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })

		return api.Output(rows)
	},
}
