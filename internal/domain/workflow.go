package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"glide.dev/pkg/glide/internal/adapter"
	"glide.dev/pkg/glide/internal/controller"
	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

// CurateArgs contains the arguments for curating one batch.
type CurateArgs struct {
	Root        m.Path
	ParsableDir m.Path // destination of parsable batches; empty keeps them in place
	RejectedDir m.Path // destination of rejected batches; empty keeps them in place
	JournalDir  string // where the decision journal is spilled; empty uses the temp dir
}

// ManifestArgs contains the arguments for stand-alone manifest generation.
type ManifestArgs struct {
	Input     m.Path // input descriptor; empty searches SearchDir for *.manifest
	Output    m.Path
	SearchDir m.Path // directory holding the bucket directories
}

// Workflow defines the curation use cases.
type Workflow interface {
	Curate(ctx context.Context, args CurateArgs) (m.Batch, error)
	Manifest(ctx context.Context, args ManifestArgs) (m.OutputDescriptor, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ManifestStore
	controller.UI

	cfg        m.Config
	enumerator *Enumerator
	classifier *Classifier
	scanner    *Scanner
	sniffer    *Sniffer
	normalizer *Normalizer
	sql        *SQLExtractor
	generator  *ManifestGenerator
	finalizer  *Finalizer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	cfg m.Config,
	fsAdapter adapter.SourceFSAdapter,
	extractor adapter.TextExtractor,
	sheets adapter.SheetReader,
	manifests adapter.ManifestStore,
	archiver adapter.Archiver,
	ui controller.UI,
) Workflow {
	cfg = cfg.Normalized()
	generator := NewManifestGenerator(fsAdapter, cfg)

	return &workflow{
		SourceFSAdapter: fsAdapter,
		ManifestStore:   manifests,
		UI:              ui,
		cfg:             cfg,
		enumerator:      NewEnumerator(fsAdapter, cfg),
		classifier:      NewClassifier(fsAdapter, cfg),
		scanner:         NewScanner(fsAdapter, extractor, cfg),
		sniffer:         NewSniffer(fsAdapter, cfg),
		normalizer:      NewNormalizer(fsAdapter, sheets, cfg),
		sql:             NewSQLExtractor(fsAdapter, cfg),
		generator:       generator,
		finalizer:       NewFinalizer(manifests, archiver, generator),
	}
}

// Curate runs one batch through cleanup, optional SQL extraction, routing,
// finalization and the move to its destination. A returned error means the
// run did not complete; the batch is then left in place and unresolved.
func (w *workflow) Curate(ctx context.Context, args CurateArgs) (m.Batch, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := m.Batch{RunID: uuid.NewString(), Outcome: m.OutcomeUnresolved}

	root, err := w.batchRoot(ctx, args.Root)
	if err != nil {
		return batch, err
	}

	batch.Root = root
	batch.Location = root
	batch.WorkDir = w.JoinPath(ctx, string(root), w.cfg.WorkDir)

	slog.Info("Starting curation", "run", batch.RunID, "root", root)

	if err := w.Start(ctx, controller.WithBatch(root, batch.RunID), controller.WithInterrupt(cancel)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return batch, err
	}

	uiCtx := context.WithoutCancel(ctx)

	journal, err := pkg.NewFileSpill[m.Candidate](args.JournalDir)
	if err != nil {
		w.Close(uiCtx)
		return batch, fmt.Errorf("open decision journal: %w", err)
	}

	defer func() { _ = journal.Close() }()

	batch, err = w.curate(ctx, batch, args, journal)
	if err != nil {
		slog.Error("Curation stopped", "run", batch.RunID, "root", batch.Root, "error", err)
		batch.Outcome = m.OutcomeUnresolved
	} else {
		slog.Info("Curation finished", "run", batch.RunID, "outcome", batch.Outcome.String(), "location", batch.Location)
	}

	if displayErr := w.DisplayBatch(uiCtx, batch, journal); displayErr != nil {
		slog.Error("Failed to display batch summary", "error", displayErr)
	}

	w.Wait(uiCtx)
	w.Close(uiCtx)

	return batch, err
}

func (w *workflow) batchRoot(ctx context.Context, path m.Path) (m.Path, error) {
	root, err := w.Resolve(ctx, path)
	if err != nil {
		return "", fmt.Errorf("resolve batch root %s: %w", path, err)
	}

	info, err := w.FileInfo(ctx, root)
	if err != nil {
		return "", fmt.Errorf("stat batch root %s: %w", root, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("batch root %s is not a directory", root)
	}

	return root, nil
}

func (w *workflow) curate(ctx context.Context, batch m.Batch, args CurateArgs, journal pkg.FileSpill[m.Candidate]) (m.Batch, error) {
	w.DisplayStage(ctx, controller.StageCleanup)

	if err := w.cleanup(ctx, batch.Root); err != nil {
		return batch, fmt.Errorf("clean working directories: %w", err)
	}

	rejected := false

	if w.cfg.ParseSQL {
		w.DisplayStage(ctx, controller.StageSQL)

		if err := w.preprocessSQL(ctx, batch.Root); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return batch, ctxErr
			}

			slog.Error("SQL preprocessing failed", "root", batch.Root, "error", err)

			batch.Outcome = m.OutcomeRejected
			batch.Reason = err.Error()
			rejected = true
		}
	}

	if !rejected {
		w.DisplayStage(ctx, controller.StageRoute)

		var err error

		batch, err = w.route(ctx, batch, journal)
		if err != nil {
			return batch, err
		}

		rejected = batch.Outcome == m.OutcomeRejected
	}

	if !rejected {
		w.DisplayStage(ctx, controller.StageFinalize)

		finalized, err := w.finalizer.Finalize(ctx, batch, w.JoinPath(ctx, string(batch.WorkDir), UploadDir))

		switch {
		case err == nil:
			batch = finalized
			batch.Outcome = m.OutcomeParsable
		case errors.Is(err, ErrNothingToPublish), errors.Is(err, ErrFinalize):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return batch, ctxErr
			}

			slog.Warn("Batch not publishable", "root", batch.Root, "error", err)

			batch = finalized
			batch.Outcome = m.OutcomeRejected
			batch.Reason = err.Error()
		default:
			return batch, err
		}
	}

	w.DisplayStage(ctx, controller.StageMove)

	return w.move(ctx, batch, args)
}

// cleanup removes every directory named like the working directory, so
// leftovers of an earlier run never leak into enumeration.
func (w *workflow) cleanup(ctx context.Context, root m.Path) error {
	var stale []m.Path

	err := w.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && path != string(root) && d.Name() == w.cfg.WorkDir {
			stale = append(stale, m.Path(path))
			return filepath.SkipDir
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, dir := range stale {
		slog.Info("Removing stale working directory", "path", dir)

		if err := w.RemoveAll(ctx, dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}

	return nil
}

// preprocessSQL extracts the tables of every SQL dump before routing. The
// pass numbers files on its own; table directories are named after it.
func (w *workflow) preprocessSQL(ctx context.Context, root m.Path) error {
	index := 0

	for path, err := range w.enumerator.Paths(ctx, root) {
		if err != nil {
			return fmt.Errorf("enumerate %s: %w", root, err)
		}

		current := index
		index++

		_, kind, err := w.classifier.Classify(ctx, path)
		if err != nil {
			if errors.Is(err, ErrUnreadableFile) {
				slog.Warn("Skipping unreadable file", "path", path, "error", err)
				continue
			}

			return err
		}

		if kind != m.KindSQL {
			continue
		}

		tables, err := w.sql.Extract(ctx, root, current, path)
		if err != nil {
			return fmt.Errorf("extract sql dump %s: %w", path, err)
		}

		slog.Debug("SQL dump extracted", "path", path, "index", current, "tables", len(tables))
	}

	return nil
}

// route visits every file once, in enumeration order. A halt marks the
// batch rejected unless individual failures are ignored.
func (w *workflow) route(ctx context.Context, batch m.Batch, journal pkg.FileSpill[m.Candidate]) (m.Batch, error) {
	buckets := NewBuckets(w.SourceFSAdapter, w.cfg, batch.Root)
	router := NewRouter(w.cfg, batch.Root, w.scanner, w.sniffer, w.normalizer, buckets)

	index := 0

	for path, err := range w.enumerator.Paths(ctx, batch.Root) {
		if err != nil {
			batch.Buckets = buckets.List()
			return batch, fmt.Errorf("enumerate %s: %w", batch.Root, err)
		}

		c := m.Candidate{Index: index, Path: path}
		index++
		batch.Files++

		routed, err := w.routeOne(ctx, router, c)

		var haltErr *HaltError

		switch {
		case err == nil:
		case errors.As(err, &haltErr):
			routed = haltErr.Candidate

			if !w.cfg.IgnoreFailures {
				if recordErr := w.record(ctx, journal, routed); recordErr != nil {
					return batch, recordErr
				}

				slog.Error("Halting batch", "root", batch.Root, "index", routed.Index, "path", routed.Path, "error", err)

				batch.Outcome = m.OutcomeRejected
				batch.Reason = err.Error()
				batch.Buckets = buckets.List()

				return batch, nil
			}

			slog.Warn("Ignoring file failure", "index", routed.Index, "path", routed.Path, "error", err)
		case errors.Is(err, ErrUnreadableFile):
			slog.Warn("Skipping unreadable file", "path", path, "error", err)

			routed = c.Decide(m.Skipped, err.Error())
		default:
			batch.Buckets = buckets.List()
			return batch, fmt.Errorf("route %s: %w", path, err)
		}

		if err := w.record(ctx, journal, routed); err != nil {
			batch.Buckets = buckets.List()
			return batch, err
		}
	}

	batch.Buckets = buckets.List()

	return batch, nil
}

func (w *workflow) routeOne(ctx context.Context, router *Router, c m.Candidate) (m.Candidate, error) {
	label, kind, err := w.classifier.Classify(ctx, c.Path)
	if err != nil {
		return c, err
	}

	c.MIME = label
	c.Kind = kind

	return router.Route(ctx, c)
}

func (w *workflow) record(ctx context.Context, journal pkg.FileSpill[m.Candidate], c m.Candidate) error {
	if err := journal.Append(c); err != nil {
		return fmt.Errorf("journal file #%d: %w", c.Index, err)
	}

	w.DisplayCandidate(ctx, c)

	return nil
}

// move relocates the batch by outcome. Without a destination the batch
// stays where it is and is reported unresolved.
func (w *workflow) move(ctx context.Context, batch m.Batch, args CurateArgs) (m.Batch, error) {
	dest := args.ParsableDir
	if batch.Outcome == m.OutcomeRejected {
		dest = args.RejectedDir
	}

	if dest == "" {
		verdict := batch.Outcome.String()
		if batch.Reason != "" {
			verdict += ": " + batch.Reason
		}

		slog.Warn("No destination configured, batch left in place", "root", batch.Root, "verdict", verdict)

		batch.Outcome = m.OutcomeUnresolved
		batch.Reason = verdict

		return batch, nil
	}

	location, err := w.Move(ctx, batch.Root, dest)
	if err != nil {
		return batch, fmt.Errorf("move batch to %s: %w", dest, err)
	}

	slog.Info("Moved batch", "root", batch.Root, "location", location, "outcome", batch.Outcome.String())

	batch.Location = location
	batch.WorkDir = rebase(batch.WorkDir, batch.Root, location)
	batch.Archive = rebase(batch.Archive, batch.Root, location)
	batch.Manifest = rebase(batch.Manifest, batch.Root, location)

	for i := range batch.Buckets {
		batch.Buckets[i].Dir = rebase(batch.Buckets[i].Dir, batch.Root, location)
		for j := range batch.Buckets[i].Links {
			batch.Buckets[i].Links[j] = rebase(batch.Buckets[i].Links[j], batch.Root, location)
		}
	}

	return batch, nil
}

// rebase rewrites path from the old batch root to the new one.
func rebase(path, from, to m.Path) m.Path {
	if path == "" {
		return path
	}

	rel, ok := strings.CutPrefix(string(path), string(from))
	if !ok {
		return path
	}

	return m.Path(string(to) + rel)
}

// Manifest generates an output descriptor outside of a curation run.
func (w *workflow) Manifest(ctx context.Context, args ManifestArgs) (m.OutputDescriptor, error) {
	input := args.Input
	if input == "" {
		found, err := w.FindInput(ctx, args.SearchDir)
		if err != nil {
			return m.OutputDescriptor{}, fmt.Errorf("find input descriptor: %w", err)
		}

		input = found
	}

	in, err := w.LoadInput(ctx, input)
	if err != nil {
		return m.OutputDescriptor{}, fmt.Errorf("load input descriptor: %w", err)
	}

	out, err := w.generator.Generate(ctx, in, args.SearchDir)
	if err != nil {
		return m.OutputDescriptor{}, err
	}

	if err := w.SaveOutput(ctx, args.Output, out); err != nil {
		return m.OutputDescriptor{}, fmt.Errorf("save output descriptor: %w", err)
	}

	slog.Info("Generated manifest", "input", input, "output", args.Output, "files", len(out.Files))

	return out, nil
}
