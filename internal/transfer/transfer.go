// Package transfer orchestrates the annotation transfer pipeline: load both
// documents, extract anchors from each, collect the source annotations, link
// them to anchors, relocate them into the target layout, and persist the
// result to a fresh output file.
package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuflow/annoport/internal/anchor"
	"github.com/docuflow/annoport/internal/config"
	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/link"
	"github.com/docuflow/annoport/internal/markup"
	"github.com/docuflow/annoport/internal/relocate"
)

// Options configure a transfer run.
type Options struct {
	SourcePath string
	TargetPath string
	OutputPath string

	// DryRun executes the full pipeline but skips the final save.
	DryRun bool
}

// SkipEntry is one skipped binding in the report.
type SkipEntry struct {
	Anchor string `json:"anchor" yaml:"anchor"`
	Kind   string `json:"kind" yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report summarizes a completed run.
type Report struct {
	SourceAnchors int         `json:"source_anchors" yaml:"source_anchors"`
	TargetAnchors int         `json:"target_anchors" yaml:"target_anchors"`
	Annotations   int         `json:"annotations" yaml:"annotations"`
	Linked        int         `json:"linked" yaml:"linked"`
	Unlinked      int         `json:"unlinked" yaml:"unlinked"`
	Created       int         `json:"created" yaml:"created"`
	Skipped       []SkipEntry `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Output        string      `json:"output,omitempty" yaml:"output,omitempty"`
	DryRun        bool        `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Agent runs annotation transfers.
type Agent struct {
	extractor *anchor.Extractor
	logger    *slog.Logger
}

// NewAgent builds an agent from configuration.
func NewAgent(cfg *config.Config, logger *slog.Logger) (*Agent, error) {
	ex, err := anchor.NewExtractor(cfg.AnchorPattern, logger)
	if err != nil {
		return nil, err
	}
	return &Agent{extractor: ex, logger: logger}, nil
}

// Run opens the source and target documents, executes the pipeline, and
// saves the output. Fatal conditions (missing file, encrypted or empty
// document, save failure) abort the run with no partial output.
func (a *Agent) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.OutputPath == opts.SourcePath || opts.OutputPath == opts.TargetPath {
		return nil, fmt.Errorf("output path %s would overwrite an input document", opts.OutputPath)
	}

	a.logger.Info("starting annotation transfer",
		"source", opts.SourcePath, "target", opts.TargetPath, "output", opts.OutputPath)

	src, err := engine.OpenPDF(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("source document: %w", err)
	}
	defer src.Close()
	a.logger.Info("loaded source document", "path", opts.SourcePath, "pages", src.PageCount())

	tgt, err := engine.OpenPDF(opts.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("target document: %w", err)
	}
	defer tgt.Close()
	a.logger.Info("loaded target document", "path", opts.TargetPath, "pages", tgt.PageCount())

	out, err := engine.NewPDFStamper(tgt)
	if err != nil {
		return nil, fmt.Errorf("target document: %w", err)
	}

	report := a.Transfer(src, tgt, out)

	if opts.DryRun {
		report.DryRun = true
		a.logger.Info("dry run, output not saved")
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := out.Save(opts.OutputPath); err != nil {
		return nil, fmt.Errorf("saving output: %w", err)
	}
	report.Output = opts.OutputPath

	a.logger.Info("annotation transfer complete",
		"created", report.Created, "skipped", len(report.Skipped), "output", opts.OutputPath)
	return report, nil
}

// Transfer runs the pipeline stages against already-open documents, queueing
// relocated markup on out. Saving is the caller's responsibility, so the
// stages stay testable against in-memory documents.
func (a *Agent) Transfer(src, tgt engine.Document, out engine.Stamper) *Report {
	srcAnchors := a.extractor.Extract(src)
	a.logger.Info("extracted source anchors", "count", len(srcAnchors))

	tgtAnchors := a.extractor.Extract(tgt)
	a.logger.Info("extracted target anchors", "count", len(tgtAnchors))

	annots := markup.Collect(src, a.logger)
	bindings, unlinked := link.Link(annots, srcAnchors, a.logger)
	res := relocate.Relocate(bindings, tgtAnchors, tgt, out, a.logger)

	report := &Report{
		SourceAnchors: len(srcAnchors),
		TargetAnchors: len(tgtAnchors),
		Annotations:   len(annots),
		Linked:        len(bindings),
		Unlinked:      len(unlinked),
		Created:       res.Created,
	}
	for _, s := range res.Skips {
		report.Skipped = append(report.Skipped, SkipEntry{
			Anchor: s.AnchorID,
			Kind:   s.Kind.String(),
			Reason: string(s.Reason),
		})
	}
	return report
}
