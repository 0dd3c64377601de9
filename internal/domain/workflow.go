package domain

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	"bopkit.dev/pkg/bopkit/internal/controller"
	m "bopkit.dev/pkg/bopkit/internal/model"
	"bopkit.dev/pkg/bopkit/pkg"
)

// OutputArgs controls what a run leaves behind besides the displayed result.
type OutputArgs struct {
	Save        bool
	Reports     m.Path
	Format      m.ReportFormat
	MetricsFile string
}

// RunArgs contains the arguments for running one scene.
type RunArgs struct {
	Scene m.Path
	// Operation and Mode override the scene's own when set.
	Operation m.Operation
	Mode      m.FragmentsMode
	// Base and Tool override the scene's embed/cutout shape names when set.
	Base   string
	Tool   string
	Output OutputArgs
}

// InspectArgs contains the arguments for inspecting a scene's fuse result.
type InspectArgs struct {
	Scene m.Path
	Split bool
}

// BatchArgs contains the arguments for running many scenes.
type BatchArgs struct {
	Patterns  []string
	Operation m.Operation
	Mode      m.FragmentsMode
	Threads   int
	SpillDir  string
	Output    OutputArgs
}

// WatchArgs contains the arguments for re-running a scene on change.
type WatchArgs struct {
	Run      RunArgs
	Debounce time.Duration
}

// ViewArgs contains the arguments for showing saved reports.
type ViewArgs struct {
	Reports []m.Path
}

// Workflow defines the user-facing pipelines of the CLI.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	Inspect(ctx context.Context, args InspectArgs) error
	Batch(ctx context.Context, args BatchArgs) error
	Watch(ctx context.Context, args WatchArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SceneStore
	adapter.ReportStore
	adapter.SceneWatcher
	adapter.ShapeFactory
	controller.UI
	Operations
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	sceneStore adapter.SceneStore,
	reportStore adapter.ReportStore,
	watcher adapter.SceneWatcher,
	factory adapter.ShapeFactory,
	ui controller.UI,
	operations Operations,
) Workflow {
	return &workflow{
		SceneStore:   sceneStore,
		ReportStore:  reportStore,
		SceneWatcher: watcher,
		ShapeFactory: factory,
		UI:           ui,
		Operations:   operations,
	}
}

// Run executes one scene, displays its report and optionally saves it.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	report, runErr := w.execute(ctx, args)

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display report: %w", err)
	}

	if err := w.persist(sceneStem(args.Scene), []m.Report{report}, args.Output); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("run %s: %w", args.Scene, runErr)
	}

	return nil
}

// Inspect builds the correspondence index of a scene and displays it.
func (w *workflow) Inspect(ctx context.Context, args InspectArgs) error {
	scene, shapes, err := w.load(args.Scene)
	if err != nil {
		return err
	}

	idx, err := w.Analyze(shapes, args.Split)
	if err != nil {
		slog.Error("Failed to analyze scene", "scene", args.Scene, "error", err)
		return fmt.Errorf("analyze %s: %w", args.Scene, err)
	}

	summary := idx.Summary(scene.ShapeNames())
	summary.Scene = args.Scene

	if err := w.DisplayIndex(ctx, summary); err != nil {
		return fmt.Errorf("display index: %w", err)
	}

	return nil
}

// Batch runs every matching scene as an independent pipeline. A failing
// scene is reported and does not stop the others.
func (w *workflow) Batch(ctx context.Context, args BatchArgs) error {
	paths, err := w.GlobScenes(args.Patterns)
	if err != nil {
		return fmt.Errorf("find scenes: %w", err)
	}

	if len(paths) == 0 {
		return fmt.Errorf("%w: %s", ErrNoScenes, strings.Join(args.Patterns, " "))
	}

	var spillOpts []pkg.SpillOption
	if args.SpillDir != "" {
		spillOpts = append(spillOpts, pkg.WithDir(args.SpillDir))
	}

	spill, err := pkg.NewFileSpill[m.Report](spillOpts...)
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Warn("Failed to close report spill", "path", spill.Path(), "error", err)
		}
	}()

	slog.Info("Starting batch", "scenes", len(paths), "threads", args.Threads)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(args.Threads, 1))

	for _, path := range paths {
		group.Go(func() error {
			report, err := w.execute(groupCtx, RunArgs{Scene: path, Operation: args.Operation, Mode: args.Mode})
			if err != nil {
				slog.Warn("Scene failed", "scene", path, "error", err)
			}

			return spill.Append(report)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	reports := make([]m.Report, 0, spill.Len())

	err = spill.Range(func(_ uint64, report m.Report) error {
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read report spill: %w", err)
	}

	slices.SortFunc(reports, func(a, b m.Report) int {
		return cmp.Compare(a.Scene, b.Scene)
	})

	if err := w.DisplayBatchSummary(ctx, reports); err != nil {
		return fmt.Errorf("display batch summary: %w", err)
	}

	if err := w.persist("batch", reports, args.Output); err != nil {
		return err
	}

	failed := 0

	for _, report := range reports {
		if report.Status != m.StatusOK {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(reports))
	}

	return nil
}

// Watch runs the scene once and again after every change until ctx ends.
// Failed runs are shown and do not end the watch.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	changes, err := w.Changes(ctx, args.Run.Scene, args.Debounce)
	if err != nil {
		return fmt.Errorf("watch %s: %w", args.Run.Scene, err)
	}

	if err := w.Run(ctx, args.Run); err != nil {
		w.DisplayWatchEvent(ctx, args.Run.Scene, err)
	}

	for path := range changes {
		w.DisplayWatchEvent(ctx, path, nil)

		if err := w.Run(ctx, args.Run); err != nil {
			w.DisplayWatchEvent(ctx, path, err)
		}
	}

	slog.Debug("Watch stopped", "scene", args.Run.Scene)

	return nil
}

// View loads previously saved report files and displays them as one summary,
// in file order.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	var reports []m.Report

	for _, path := range args.Reports {
		loaded, err := w.LoadReports(path)
		if err != nil {
			slog.Error("Failed to load reports", "path", path, "error", err)
			return fmt.Errorf("view: %w", err)
		}

		reports = append(reports, loaded...)
	}

	if err := w.DisplayBatchSummary(ctx, reports); err != nil {
		return fmt.Errorf("display reports: %w", err)
	}

	return nil
}

// execute always returns a report. Failures are recorded in it as well as
// returned.
func (w *workflow) execute(ctx context.Context, args RunArgs) (m.Report, error) {
	start := time.Now()
	report := m.Report{
		ID:        uuid.NewString(),
		Scene:     args.Scene,
		Operation: args.Operation,
	}

	fail := func(err error) (m.Report, error) {
		report.Status = m.StatusFailed
		report.Error = err.Error()
		report.Duration = time.Since(start)

		return report, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	scene, shapes, err := w.load(args.Scene)
	if err != nil {
		return fail(err)
	}

	op := cmp.Or(args.Operation, scene.Operation, m.OperationFuse)
	mode := cmp.Or(args.Mode, scene.Mode, m.FragmentsStandard)

	report.Operation = op
	report.Inputs = len(shapes)

	if op == m.OperationFragments {
		report.Mode = mode
	}

	result, err := w.apply(op, mode, scene, shapes, args)
	if err != nil {
		slog.Error("Operation failed", "scene", args.Scene, "operation", op, "error", err)
		return fail(err)
	}

	report.Status = m.StatusOK
	report.ResultType = result.Type().String()
	report.ResultChildren = len(result.ChildShapes())
	report.ResultMeasure = result.Measure()
	report.Duration = time.Since(start)

	slog.Info("Operation completed", "scene", args.Scene, "operation", op, "result", report.ResultType,
		"measure", report.ResultMeasure, "duration", report.Duration)

	return report, nil
}

func (w *workflow) load(path m.Path) (m.Scene, []m.Shape, error) {
	scene, err := w.LoadScene(path)
	if err != nil {
		slog.Error("Failed to load scene", "scene", path, "error", err)
		return m.Scene{}, nil, fmt.Errorf("load scene: %w", err)
	}

	shapes := make([]m.Shape, len(scene.Shapes))

	for i, spec := range scene.Shapes {
		shapes[i], err = w.Build(spec)
		if err != nil {
			slog.Error("Failed to build shape", "scene", path, "shape", i, "error", err)
			return m.Scene{}, nil, fmt.Errorf("build shape %s: %w", scene.ShapeNames()[i], err)
		}
	}

	return scene, shapes, nil
}

func (w *workflow) apply(op m.Operation, mode m.FragmentsMode, scene m.Scene, shapes []m.Shape, args RunArgs) (m.Shape, error) {
	switch op {
	case m.OperationFuse:
		return w.Fuse(shapes)
	case m.OperationConnect:
		return w.Connect(shapes)
	case m.OperationFragments:
		return w.BooleanFragments(shapes, mode)
	case m.OperationEmbed, m.OperationCutout:
		base, tool, err := baseAndTool(scene, shapes, cmp.Or(args.Base, scene.Base), cmp.Or(args.Tool, scene.Tool))
		if err != nil {
			return nil, err
		}

		if op == m.OperationEmbed {
			return w.Embed(base, tool)
		}

		return w.Cutout(base, tool)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// baseAndTool picks the named shapes, defaulting to the first shape as base
// and the next other one as tool.
func baseAndTool(scene m.Scene, shapes []m.Shape, baseName, toolName string) (m.Shape, m.Shape, error) {
	names := scene.ShapeNames()

	baseIdx := 0
	if baseName != "" {
		baseIdx = slices.Index(names, baseName)
		if baseIdx < 0 {
			return nil, nil, fmt.Errorf("base %q: %w", baseName, ErrNotFound)
		}
	}

	toolIdx := -1

	switch {
	case toolName != "":
		toolIdx = slices.Index(names, toolName)
		if toolIdx < 0 {
			return nil, nil, fmt.Errorf("tool %q: %w", toolName, ErrNotFound)
		}
	default:
		for i := range shapes {
			if i != baseIdx {
				toolIdx = i
				break
			}
		}
	}

	if toolIdx < 0 {
		return nil, nil, fuseError("select tool", ErrTooFewShapes, []int{baseIdx})
	}

	return shapes[baseIdx], shapes[toolIdx], nil
}

func (w *workflow) persist(name string, reports []m.Report, out OutputArgs) error {
	if out.Save {
		format := cmp.Or(out.Format, m.FormatYAML)
		path := m.Path(filepath.Join(string(out.Reports), name+format.Extension()))

		if err := w.SaveReports(path, format, reports); err != nil {
			slog.Error("Failed to save reports", "path", path, "error", err)
			return fmt.Errorf("save reports: %w", err)
		}

		slog.Info("Saved reports", "path", path, "count", len(reports))
	}

	if out.MetricsFile != "" {
		if err := WriteMetrics(out.MetricsFile); err != nil {
			slog.Error("Failed to write metrics", "path", out.MetricsFile, "error", err)
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

func sceneStem(path m.Path) string {
	base := filepath.Base(string(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
