package compiler

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
	"github.com/matzehuels/pangolin/pkg/naming"
	"github.com/matzehuels/pangolin/pkg/normalize"
	"github.com/matzehuels/pangolin/pkg/observability"
)

// Options configures an Assembler.
type Options struct {
	// Archiver receives the tagged sources after assembly. Nil disables
	// archiving.
	Archiver Archiver

	// Concurrency bounds the parse phase. Zero means GOMAXPROCS.
	Concurrency int

	// Logger defaults to a discarding logger.
	Logger *log.Logger
}

// Assembler builds registries from sources.
type Assembler struct {
	archiver    Archiver
	concurrency int
	logger      *log.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(opts Options) *Assembler {
	a := &Assembler{
		archiver:    opts.Archiver,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if a.concurrency <= 0 {
		a.concurrency = runtime.GOMAXPROCS(0)
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	if a.archiver == nil {
		a.archiver = NullArchiver{}
	}
	return a
}

// Result is the outcome of a successful assembly.
type Result struct {
	Registry *icon.Registry
	Stats    Stats

	// ArchiveErrors holds the recovered ARCHIVAL_WRITE failures.
	ArchiveErrors []error
}

// Stats summarizes an assembly.
type Stats struct {
	Sources         int
	Tagged          int
	Legacy          int
	Archived        int
	ArchiveFailures int
	Duration        time.Duration
}

type parsed struct {
	name naming.Name
	path string
}

// Assemble parses every source and inserts the records in input order.
//
// Parsing runs in parallel; the first error in input order is returned so
// failures are reported deterministically. Duplicate ids fail with
// DUPLICATE_ICON. On any error no registry is returned and nothing is
// archived.
func (a *Assembler) Assemble(ctx context.Context, sources []Source) (result *Result, err error) {
	start := time.Now()
	hooks := observability.Compile()
	hooks.OnAssembleStart(ctx, len(sources))
	defer func() {
		n := 0
		if result != nil {
			n = result.Registry.Len()
		}
		hooks.OnAssembleComplete(ctx, n, time.Since(start), err)
	}()

	items, err := a.parseAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	b := icon.NewBuilder()
	stats := Stats{Sources: len(sources)}
	for i, it := range items {
		if err := b.Add(icon.NewRecord(it.name.ID, it.name.Tags, it.path)); err != nil {
			return nil, errors.New(errors.GetCode(err), "%s: %s", sources[i].Name, errors.UserMessage(err))
		}
		if it.name.Convention == naming.Tagged {
			stats.Tagged++
		} else {
			stats.Legacy++
		}
		a.logger.Debug("icon added", "id", it.name.ID, "file", sources[i].Name, "convention", it.name.Convention)
	}
	result = &Result{Registry: b.Build()}

	for i, it := range items {
		if it.name.Convention != naming.Tagged {
			continue
		}
		target := it.name.ArchiveName()
		if err := a.archiver.Archive(ctx, target, []byte(sources[i].Content)); err != nil {
			werr := errors.Wrap(errors.ErrCodeArchivalWrite, err, "archive %s as %s", sources[i].Name, target)
			a.logger.Warn("archive copy failed", "file", sources[i].Name, "target", target, "err", err)
			hooks.OnArchiveFailure(ctx, it.name.ID, werr)
			result.ArchiveErrors = append(result.ArchiveErrors, werr)
			stats.ArchiveFailures++
			continue
		}
		stats.Archived++
	}

	stats.Duration = time.Since(start)
	result.Stats = stats
	a.logger.Debug("registry assembled", "icons", result.Registry.Len(), "tagged", stats.Tagged, "legacy", stats.Legacy)
	return result, nil
}

func (a *Assembler) parseAll(ctx context.Context, sources []Source) ([]parsed, error) {
	items := make([]parsed, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			items[i], errs[i] = parseSource(src)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func parseSource(src Source) (parsed, error) {
	name, err := naming.Extract(src.Name)
	if err != nil {
		return parsed{}, err
	}
	path, err := normalize.Normalize(src.Content)
	if err != nil {
		return parsed{}, errors.New(errors.GetCode(err), "%s: %s", src.Name, errors.UserMessage(err))
	}
	return parsed{name: name, path: path}, nil
}
