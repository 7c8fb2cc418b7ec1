// Package bundle assembles a release bundle: it copies the configured demo
// directories from a source tree into a destination tree and writes the
// dependency manifest next to them.
//
// The pipeline is strictly sequential and fail-fast:
//
//	NotStarted → ConfigLoaded → DirectoriesCopied → ManifestWritten
//
// Any step error moves it to Failed. There are no retries and nothing is
// rolled back.
package bundle

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/allyourbase/demobundle/internal/demolist"
	"github.com/spf13/afero"
)

// Stage is a pipeline state.
type Stage int

const (
	StageNotStarted Stage = iota
	StageConfigLoaded
	StageDirectoriesCopied
	StageManifestWritten
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not-started"
	case StageConfigLoaded:
		return "config-loaded"
	case StageDirectoriesCopied:
		return "directories-copied"
	case StageManifestWritten:
		return "manifest-written"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Reporter receives step progress. ui.StepSpinner implements it.
type Reporter interface {
	Start(msg string)
	Done()
	Fail()
}

type nopReporter struct{}

func (nopReporter) Start(string) {}
func (nopReporter) Done()        {}
func (nopReporter) Fail()        {}

// Options are the inputs of a single pipeline run.
type Options struct {
	DemoListPath string
	SourceDir    string
	DestDir      string
	Primary      string
	Secondary    string
}

// Result describes how far a run got.
type Result struct {
	Stage        Stage
	Demos        demolist.List
	Copied       []string
	ManifestPath string
}

// Pipeline runs the load → copy → manifest sequence against Fs.
type Pipeline struct {
	Fs       afero.Fs
	Logger   *slog.Logger
	Reporter Reporter
}

// New returns a Pipeline over fsys, or the OS file system when fsys is nil.
func New(fsys afero.Fs, logger *slog.Logger, reporter Reporter) *Pipeline {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Pipeline{Fs: fsys, Logger: logger, Reporter: reporter}
}

// Run executes the pipeline. The returned Result is never nil; on error its
// Stage is StageFailed and Copied lists the demos copied before the failure.
func (p *Pipeline) Run(opts Options) (*Result, error) {
	res := &Result{Stage: StageNotStarted}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fail := func(err error) (*Result, error) {
		res.Stage = StageFailed
		return res, err
	}

	if opts.Primary == "" || opts.Secondary == "" {
		return fail(ErrMissingRequirement)
	}

	err := p.step("Loading demo list...", func() error {
		demos, err := demolist.Load(p.Fs, opts.DemoListPath)
		if err != nil {
			return err
		}
		res.Demos = demos
		return nil
	})
	if err != nil {
		return fail(err)
	}
	res.Stage = StageConfigLoaded
	logger.Info("demo list loaded", "path", opts.DemoListPath, "demos", len(res.Demos))

	err = p.step(fmt.Sprintf("Copying %d demos...", len(res.Demos)), func() error {
		copied, err := CopyAll(p.Fs, res.Demos, opts.SourceDir, opts.DestDir, logger)
		res.Copied = copied
		return err
	})
	if err != nil {
		return fail(err)
	}
	res.Stage = StageDirectoriesCopied
	logger.Info("demos copied", "src", opts.SourceDir, "dst", opts.DestDir, "count", len(res.Copied))

	err = p.step("Writing manifest...", func() error {
		path, err := WriteManifest(p.Fs, opts.DestDir, opts.Primary, opts.Secondary)
		res.ManifestPath = path
		return err
	})
	if err != nil {
		return fail(err)
	}
	res.Stage = StageManifestWritten
	logger.Info("manifest written", "path", res.ManifestPath)

	return res, nil
}

func (p *Pipeline) step(msg string, fn func() error) error {
	r := p.Reporter
	if r == nil {
		r = nopReporter{}
	}
	r.Start(msg)
	if err := fn(); err != nil {
		r.Fail()
		return err
	}
	r.Done()
	return nil
}
