package generate

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/logfields"
	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/timespan"
)

// Walker descends the report tree depth-first, accumulating effective
// options along the way, and hands every node that declares a template to
// the pipeline as a leaf task.
type Walker struct {
	pipeline *Pipeline
	skinRoot string // directory containing the template files
	htmlRoot string // directory receiving the generated files
}

// NewWalker creates a walker rooted at the configured skin and output
// directories.
func NewWalker(pipeline *Pipeline, skinRoot, htmlRoot string) *Walker {
	return &Walker{pipeline: pipeline, skinRoot: skinRoot, htmlRoot: htmlRoot}
}

// Walk generates all reports under node and returns the total file count.
// opts must already include the node's own scalars; child snapshots are
// derived from it functionally, so sibling branches cannot affect each
// other.
func (wk *Walker) Walk(ctx context.Context, name string, node *config.Node, opts config.Options, refTS int64) int {
	ngen := 0

	node.Sections(func(childName string, child *config.Node) {
		childOpts := opts.Merge(child)
		// Sections named for the summary periods imply a summarization
		// mode unless the section sets one explicitly.
		if (childName == timespan.SectionSummaryByMonth || childName == timespan.SectionSummaryByYear) &&
			!child.HasScalar(config.OptionSummarizeBy) {
			childOpts = childOpts.With(config.OptionSummarizeBy, childName)
		}
		ngen += wk.Walk(ctx, childName, child, childOpts, refTS)
	})

	// Only nodes that declare a template of their own are leaves. An
	// inherited template must not generate a second copy for option-only
	// child sections.
	if !node.HasScalar(config.OptionTemplate) {
		return ngen
	}
	templateRel, _ := opts.Get(config.OptionTemplate)

	task, err := wk.resolveTask(name, templateRel, opts)
	if err != nil {
		slog.Warn("Skipping report: invalid options", logfields.Report(name), logfields.Error(err))
		return ngen
	}

	return ngen + wk.pipeline.Run(ctx, task, refTS)
}

// resolveTask turns an effective option snapshot into a concrete task.
func (wk *Walker) resolveTask(name, templateRel string, opts config.Options) (Task, error) {
	mode, err := timespan.ParseMode(opts.String(config.OptionSummarizeBy, "none"))
	if err != nil {
		return Task{}, err
	}
	enc, err := render.ParseEncoding(opts.String(config.OptionEncoding, ""))
	if err != nil {
		return Task{}, err
	}
	return Task{
		Report:   name,
		Template: filepath.Join(wk.skinRoot, templateRel),
		DestDir:  filepath.Join(wk.htmlRoot, filepath.Dir(templateRel)),
		Encoding: enc,
		Database: opts.String(config.OptionDatabase, ""),
		Mode:     mode,
		StaleAge: opts.Int64(config.OptionStaleAge, 0),
	}, nil
}
