package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"storylist.dev/pkg/storylist/internal/adapter"
	"storylist.dev/pkg/storylist/internal/controller"
	m "storylist.dev/pkg/storylist/internal/model"
)

// ErrStale is returned by Check when the generated module or manifest on disk
// differs from a fresh generation.
var ErrStale = errors.New("generated module is stale")

// DuplicateStoryError reports story IDs produced more than once in strict mode.
type DuplicateStoryError struct {
	StoryID string
	First   m.SourceEntry
	Second  m.SourceEntry
}

func (e *DuplicateStoryError) Error() string {
	return fmt.Sprintf("duplicate story id %q in %s and %s", e.StoryID, e.First, e.Second)
}

// ScanArgs selects and names the entries of an invocation.
type ScanArgs struct {
	Paths       []m.Path
	Exclude     []string
	StorySuffix string
	AppSrcDir   m.Path
	Strict      bool
}

// GenerateArgs contains the arguments for generating the registry module.
type GenerateArgs struct {
	ScanArgs
	// Output is the module path; empty or "-" writes to the UI.
	Output    m.Path
	Manifest  m.Path
	HotReload bool
}

// WatchArgs contains the arguments for regenerating on file changes.
type WatchArgs struct {
	GenerateArgs
	Debounce time.Duration
}

// Workflow defines the storylist use cases.
type Workflow interface {
	Generate(ctx context.Context, args GenerateArgs) error
	List(ctx context.Context, args ScanArgs) error
	Check(ctx context.Context, args GenerateArgs) error
	Watch(ctx context.Context, args WatchArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ScriptFileAdapter
	adapter.ManifestStore
	adapter.SourceWatcher
	controller.UI
	Emitter
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	scriptAdapter adapter.ScriptFileAdapter,
	manifestStore adapter.ManifestStore,
	watcher adapter.SourceWatcher,
	ui controller.UI,
	emitter Emitter,
) Workflow {
	return &workflow{
		SourceFSAdapter:   fsAdapter,
		ScriptFileAdapter: scriptAdapter,
		ManifestStore:     manifestStore,
		SourceWatcher:     watcher,
		UI:                ui,
		Emitter:           emitter,
	}
}

// Generate extracts every entry and writes the registry module.
func (w *workflow) Generate(ctx context.Context, args GenerateArgs) error {
	extraction, module, err := w.build(ctx, args)
	if err != nil {
		return err
	}

	return w.publish(ctx, args, extraction, module)
}

// List shows the stories that Generate would register.
func (w *workflow) List(ctx context.Context, args ScanArgs) error {
	extraction, err := w.scan(ctx, args)
	if err != nil {
		return err
	}

	return w.DisplayStories(ctx, extraction.Records)
}

// Check regenerates in memory and compares the result with args.Output and,
// when set, with the stories recorded in args.Manifest.
func (w *workflow) Check(ctx context.Context, args GenerateArgs) error {
	if isStdout(args.Output) {
		return fmt.Errorf("check requires an output path")
	}

	extraction, module, err := w.build(ctx, args)
	if err != nil {
		return err
	}

	current, err := w.ReadFile(ctx, args.Output)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", args.Output, err)
	}

	diff, err := unifiedDiff(args.Output, string(current), module)
	if err != nil {
		return err
	}

	w.DisplayCheck(ctx, args.Output, diff)

	stale := diff != ""

	if args.Manifest != "" {
		manifestDiff, err := w.checkManifest(ctx, args, extraction)
		if err != nil {
			return err
		}

		w.DisplayCheck(ctx, args.Manifest, manifestDiff)

		stale = stale || manifestDiff != ""
	}

	if stale {
		return ErrStale
	}

	return nil
}

// checkManifest diffs the manifest on disk against the one Generate would
// write. A missing manifest is stale.
func (w *workflow) checkManifest(ctx context.Context, args GenerateArgs, extraction m.Extraction) (string, error) {
	var current string

	manifest, err := w.LoadManifest(ctx, args.Manifest)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("load manifest: %w", err)
	default:
		current = manifestSummary(manifest.Module, manifest.Stories)
	}

	return unifiedDiff(args.Manifest, current, manifestSummary(string(args.Output), extraction.Records))
}

// manifestSummary renders the manifest fields Check compares, one per line.
func manifestSummary(module string, records []m.StoryRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "module: %s\n", module)

	for _, record := range records {
		fmt.Fprintf(&b, "%s: %s#%s\n", record.StoryID, record.Source.Slash(), record.BindingName)
	}

	return b.String()
}

// unifiedDiff returns "" when current equals generated.
func unifiedDiff(target m.Path, current, generated string) (string, error) {
	if current == generated {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(generated),
		FromFile: string(target),
		ToFile:   string(target) + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", target, err)
	}

	return diff, nil
}

// Watch generates once, then regenerates after every burst of changes and
// reports whether a live session could hot-swap the result.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	if isStdout(args.Output) {
		return fmt.Errorf("watch requires an output path")
	}

	extraction, module, err := w.build(ctx, args.GenerateArgs)
	if err != nil {
		return err
	}

	if err := w.publish(ctx, args.GenerateArgs, extraction, module); err != nil {
		return err
	}

	registry := NewStoryRegistry(extraction.Records)

	changes, watchErrs, err := w.SourceWatcher.Watch(ctx, watchRoots(args.Paths))
	if err != nil {
		return fmt.Errorf("watch sources: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	trigger := make(chan struct{}, 1)
	generated := generatedFiles(args.Output, args.Manifest)

	group.Go(func() error {
		defer close(trigger)

		return debounceChanges(groupCtx, changes, watchErrs, generated, args.Debounce, trigger)
	})

	group.Go(func() error {
		for range trigger {
			w.regenerate(groupCtx, args.GenerateArgs, registry)
		}

		return nil
	})

	return group.Wait()
}

func (w *workflow) regenerate(ctx context.Context, args GenerateArgs, registry *StoryRegistry) {
	if ctx.Err() != nil {
		return
	}

	extraction, module, err := w.build(ctx, args)
	if err != nil {
		// The previous module stays in place until the sources parse again.
		slog.Warn("regeneration failed", "error", err)
		w.DisplayError(ctx, err)

		return
	}

	before := registry.Keys()

	decision := registry.Accept(extraction.Records)
	if decision == m.ReloadInvalidate {
		registry.Reload(extraction.Records)
	}

	report := reloadReport(registry, before, decision)

	slog.Info("regenerated registry", "stories", report.Stories, "decision", decision.String(),
		"added", len(report.Added), "removed", len(report.Removed))

	if err := w.publish(ctx, args, extraction, module); err != nil {
		w.DisplayError(ctx, err)
		return
	}

	w.DisplayReload(ctx, report)
}

// reloadReport compares the registry against the keys it held before an update.
func reloadReport(registry *StoryRegistry, before []string, decision m.ReloadDecision) m.ReloadReport {
	report := m.ReloadReport{Decision: decision, Stories: registry.Len()}

	gone := make(map[string]struct{}, len(before))
	for _, id := range before {
		gone[id] = struct{}{}
	}

	for _, id := range registry.Keys() {
		if _, ok := gone[id]; ok {
			delete(gone, id)
			continue
		}

		if record, ok := registry.Lookup(id); ok {
			report.Added = append(report.Added, record)
		}
	}

	for _, id := range before {
		if _, ok := gone[id]; ok {
			report.Removed = append(report.Removed, id)
		}
	}

	return report
}

// debounceChanges sends one trigger per burst of changes. Changes to ignored
// paths, the files the workflow writes itself, are dropped.
func debounceChanges(ctx context.Context, changes <-chan m.Path, errs <-chan error, ignored map[string]struct{}, delay time.Duration, trigger chan<- struct{}) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-changes:
			if !ok {
				return nil
			}

			if _, skip := ignored[absPath(changed)]; skip {
				continue
			}

			slog.Debug("source changed", "path", string(changed))

			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}

			timerC = timer.C
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			slog.Warn("watcher error", "error", err)
		case <-timerC:
			timerC = nil

			select {
			case trigger <- struct{}{}:
			default:
			}
		}
	}
}

// build runs one full, fail-fast invocation: extract all entries, then emit.
func (w *workflow) build(ctx context.Context, args GenerateArgs) (m.Extraction, string, error) {
	extraction, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return m.Extraction{}, "", err
	}

	module := w.Emit(extraction, EmitOptions{HotReload: args.HotReload})

	return extraction, module, nil
}

func (w *workflow) publish(ctx context.Context, args GenerateArgs, extraction m.Extraction, module string) error {
	if isStdout(args.Output) {
		if err := w.DisplayModule(ctx, module); err != nil {
			return err
		}
	} else {
		if err := w.WriteFile(args.Output, []byte(module), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args.Output, err)
		}

		w.DisplayGenerated(ctx, args.Output, extraction.Len())
	}

	if args.Manifest == "" {
		return nil
	}

	manifest := adapter.Manifest{Stories: extraction.Records}
	if !isStdout(args.Output) {
		manifest.Module = string(args.Output)
	}

	if err := w.SaveManifest(args.Manifest, manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	return nil
}

// scan resolves the entries and extracts them strictly in order. The first
// failure aborts the whole scan.
func (w *workflow) scan(ctx context.Context, args ScanArgs) (m.Extraction, error) {
	var all m.Extraction

	entries, err := w.resolveEntries(args)
	if err != nil {
		return all, fmt.Errorf("resolve entries: %w", err)
	}

	importBase, err := w.importBase(args.AppSrcDir)
	if err != nil {
		return all, fmt.Errorf("resolve app source dir: %w", err)
	}

	extractor := NewExtractor(w.ScriptFileAdapter, ExtractorOptions{
		StorySuffix: args.StorySuffix,
		ImportBase:  importBase,
	})

	seen := make(map[string]m.SourceEntry)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return m.Extraction{}, err
		}

		content, err := w.ReadFile(ctx, m.Path(entry))
		if err != nil {
			return m.Extraction{}, fmt.Errorf("failed to read %s: %w", entry, err)
		}

		extraction, err := extractor.Extract(ctx, entry, content)
		if err != nil {
			return m.Extraction{}, fmt.Errorf("failed to extract %s: %w", entry, err)
		}

		for _, record := range extraction.Records {
			first, dup := seen[record.StoryID]
			if !dup {
				seen[record.StoryID] = entry
				continue
			}

			if args.Strict {
				return m.Extraction{}, &DuplicateStoryError{StoryID: record.StoryID, First: first, Second: entry}
			}

			slog.Warn("duplicate story id, last one wins", "story_id", record.StoryID, "first", string(first), "second", string(entry))
		}

		all.Append(extraction)
	}

	slog.Info("scanned entries", "entries", len(entries), "stories", all.Len())

	return all, nil
}

// importBase is the working directory relative to the application source
// root, the prefix under which entries are imported.
func (w *workflow) importBase(appSrcDir m.Path) (string, error) {
	if appSrcDir == "" {
		appSrcDir = "."
	}

	wd, err := w.Getwd()
	if err != nil {
		return "", err
	}

	rel, err := w.RelPath(appSrcDir, wd)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(string(rel)), nil
}

func (w *workflow) resolveEntries(args ScanArgs) ([]m.SourceEntry, error) {
	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return nil, err
	}

	paths := args.Paths
	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	seen := make(map[m.SourceEntry]struct{})

	var entries []m.SourceEntry

	add := func(entry m.SourceEntry) {
		if matchesAny(excludes, string(entry)) {
			slog.Debug("excluded entry", "path", string(entry))
			return
		}

		if _, ok := seen[entry]; ok {
			return
		}

		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}

	for _, root := range paths {
		info, err := w.FileInfo(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(m.SourceEntry(root))
			continue
		}

		err = w.Walk(root, true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() && isStoryFile(path, args.StorySuffix) {
				add(m.SourceEntry(path))
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// isStoryFile reports whether a walked file is a module carrying the story
// marker. Files given explicitly skip this check.
func isStoryFile(path, storySuffix string) bool {
	suffix := m.ModuleSuffix(path)
	if suffix == "" {
		return false
	}

	if strings.HasSuffix(path, ".d.ts") {
		return false
	}

	return strings.HasSuffix(strings.TrimSuffix(path, suffix), storySuffix)
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

func watchRoots(paths []m.Path) []m.Path {
	if len(paths) == 0 {
		return []m.Path{"."}
	}

	return paths
}

func generatedFiles(paths ...m.Path) map[string]struct{} {
	files := make(map[string]struct{}, len(paths))

	for _, p := range paths {
		if isStdout(p) {
			continue
		}

		files[absPath(p)] = struct{}{}
	}

	return files
}

func absPath(p m.Path) string {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return filepath.Clean(string(p))
	}

	return abs
}

func isStdout(output m.Path) bool {
	return output == "" || output == "-"
}
