package exportjar

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/store"
	"github.com/xonecas/jpx/internal/workspace"
)

const noMainClass = "No main class"

// Options wires a Wizard to its collaborators. History is optional.
type Options struct {
	Service  Service
	Folders  workspace.Folders
	Prompter Prompter
	Progress Progress
	Notifier Notifier
	History  History
	// ProceedOnBuildError exports even when the workspace build failed.
	ProceedOnBuildError bool
}

// Wizard runs jar exports.
type Wizard struct {
	opts Options
}

// New returns a Wizard. A nil Progress drops progress updates.
func New(opts Options) *Wizard {
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	return &Wizard{opts: opts}
}

// session is the state of one run.
type session struct {
	stack       []Step
	target      *jdtls.NodeData
	mains       []jdtls.MainClass
	folderURI   string
	projectPath string
	projects    []jdtls.NodeData
	mainClass   string
	selected    []string
	output      string
}

func (s *session) push(step Step) { s.stack = append(s.stack, step) }

func (s *session) pop() (Step, bool) {
	if len(s.stack) == 0 {
		return 0, false
	}
	step := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return step, true
}

// Run exports a jar and returns its path. target may name a workspace node
// the command was invoked on. The Notifier hears about the outcome exactly
// once, and the run is recorded in History.
func (w *Wizard) Run(ctx context.Context, target *jdtls.NodeData) (string, error) {
	s := &session{target: target}
	path, err := w.run(ctx, s)
	if err != nil && ctx.Err() != nil {
		// Whatever failed was interrupted by the cancellation.
		err = ErrCancelled
	}
	w.finish(ctx, s, path, err)
	return path, err
}

func (w *Wizard) run(ctx context.Context, s *session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}
	if err := w.build(ctx); err != nil {
		return "", err
	}

	mains, err := w.opts.Service.GetMainClasses(ctx, "")
	if err != nil {
		return "", fmt.Errorf("get main classes: %w", err)
	}
	s.mains = mains

	step := StepResolveProject
	for step != StepFinish {
		var tr Transition
		switch step {
		case StepResolveProject:
			tr = w.resolveProject(ctx, s)
		case StepResolveMainMethod:
			tr = w.resolveMainMethod(ctx, s)
		case StepGenerateJar:
			tr = w.generateJar(ctx, s)
		default:
			return "", fmt.Errorf("unknown step %s", step)
		}

		switch tr.Kind {
		case TransitionAdvance:
			step = tr.Next
		case TransitionBack:
			prev, ok := s.pop()
			if !ok {
				return "", ErrCancelled
			}
			log.Debug().Str("step", prev.String()).Msg("exportjar: back")
			step = prev
		default:
			return "", tr.Err
		}
	}
	return s.output, nil
}

func (w *Wizard) build(ctx context.Context) error {
	w.opts.Progress.Report(10, "Building workspace...")
	status, err := w.opts.Service.BuildWorkspace(ctx, false)
	if err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	switch status {
	case jdtls.CompileSucceed:
	case jdtls.CompileWithError:
		log.Warn().Msg("exportjar: workspace has compile errors, exporting anyway")
	case jdtls.CompileCancelled:
		return ErrCancelled
	default:
		if !w.opts.ProceedOnBuildError {
			return ErrBuildFailed
		}
		log.Warn().Str("status", status.String()).Msg("exportjar: build failed, exporting anyway")
	}
	return nil
}

func (w *Wizard) resolveProject(ctx context.Context, s *session) Transition {
	if ctx.Err() != nil {
		return Cancelled()
	}

	var folderURI string
	switch folders := w.folders(); {
	case s.target != nil && s.target.Kind == jdtls.KindWorkspace:
		folderURI = s.target.URI
	case len(folders) == 0:
		return Failed(ErrNoWorkspaceFolder)
	case len(folders) == 1:
		folderURI = folders[0].URI
	default:
		w.opts.Progress.Report(10, "Selecting project...")
		items := make([]Item, len(folders))
		for i, f := range folders {
			items[i] = Item{Label: f.Name, Description: f.Path(), Value: f.URI}
		}
		res, tr, ok := w.pick(ctx, PickRequest{
			Title:       "Export Jar - Determine project",
			Placeholder: "Select the project...",
			Items:       items,
		})
		if !ok {
			return tr
		}
		s.push(StepResolveProject)
		folderURI = res.Items[0].Value
	}

	projects, err := w.opts.Service.GetProjects(ctx, folderURI)
	if err != nil {
		return Failed(fmt.Errorf("list projects: %w", err))
	}
	s.folderURI = folderURI
	s.projectPath = workspace.URIToPath(folderURI)
	s.projects = projects
	return Advance(StepResolveMainMethod)
}

func (w *Wizard) resolveMainMethod(ctx context.Context, s *session) Transition {
	if ctx.Err() != nil {
		return Cancelled()
	}
	w.opts.Progress.Report(10, "Resolving main classes...")

	var items []Item
	for _, m := range s.mains {
		if workspace.Contains(s.projectPath, m.Path) {
			items = append(items, Item{Label: m.SimpleName(), Description: m.Name, Value: m.Name})
		}
	}
	if len(items) == 0 {
		s.mainClass = ""
		return Advance(StepGenerateJar)
	}

	w.opts.Progress.Report(30, "Determining main class...")
	items = append(items, Item{Label: noMainClass})
	res, tr, ok := w.pick(ctx, PickRequest{
		Title:       "Export Jar - Determine main class",
		Placeholder: "Select the main class...",
		Items:       items,
		ShowBack:    len(s.stack) > 0,
	})
	if !ok {
		return tr
	}
	s.push(StepResolveMainMethod)
	s.mainClass = res.Items[0].Value
	return Advance(StepGenerateJar)
}

func (w *Wizard) generateJar(ctx context.Context, s *session) Transition {
	if ctx.Err() != nil {
		return Cancelled()
	}
	if len(s.projects) == 0 {
		return Failed(ErrNoProject)
	}
	w.opts.Progress.Report(10, "Resolving classpaths...")

	entries, err := candidates(ctx, w.opts.Service, s.projects, s.projectPath)
	if err != nil {
		return Failed(err)
	}
	switch len(entries) {
	case 0:
		return Failed(ErrNoClasspath)
	case 1:
		s.selected = []string{entries[0].Path}
	default:
		sortEntries(entries)
		res, tr, ok := w.pick(ctx, PickRequest{
			Title:       "Export Jar - Determine elements",
			Placeholder: "Select the elements...",
			Items:       entryItems(entries),
			Multi:       true,
			ShowBack:    len(s.stack) > 0,
		})
		if !ok {
			return tr
		}
		s.selected = s.selected[:0]
		for _, it := range res.Items {
			s.selected = append(s.selected, it.Value)
		}
	}

	dest := filepath.Join(s.projectPath, filepath.Base(s.projectPath)+".jar")
	w.opts.Progress.Report(30, "Generating jar...")
	res, err := w.opts.Service.ExportJar(ctx, s.mainClass, s.selected, dest)
	if err != nil {
		return Failed(fmt.Errorf("%w: %w", ErrExportFailed, err))
	}
	if !res.Result {
		if res.Message != "" {
			return Failed(fmt.Errorf("%w: %s", ErrExportFailed, res.Message))
		}
		return Failed(ErrExportFailed)
	}
	s.output = dest
	return Advance(StepFinish)
}

// pick shows req and maps anything but an accepted, non-empty single pick
// (or any multi pick) to the transition to take instead.
func (w *Wizard) pick(ctx context.Context, req PickRequest) (PickResult, Transition, bool) {
	res, err := w.opts.Prompter.Pick(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return res, Cancelled(), false
		}
		return res, Failed(err), false
	}
	switch res.Action {
	case PickBack:
		if req.ShowBack {
			return res, Back(), false
		}
		return res, Cancelled(), false
	case PickAccepted:
		if req.Multi || len(res.Items) > 0 {
			return res, Transition{}, true
		}
	}
	return res, Cancelled(), false
}

func (w *Wizard) folders() []workspace.Folder {
	if w.opts.Folders == nil {
		return nil
	}
	return w.opts.Folders.Folders()
}

func (w *Wizard) finish(ctx context.Context, s *session, path string, err error) {
	rec := store.ExportRecord{
		ProjectURI:  s.folderURI,
		MainClass:   s.mainClass,
		Destination: path,
		Entries:     len(s.selected),
		Outcome:     store.OutcomeSuccess,
	}
	switch {
	case err == nil:
		log.Info().Str("path", path).Msg("exportjar: exported")
		if w.opts.Notifier != nil {
			w.opts.Notifier.Success(path)
		}
	case errors.Is(err, ErrCancelled):
		rec.Outcome = store.OutcomeCancelled
		log.Info().Msg("exportjar: cancelled")
		if w.opts.Notifier != nil {
			w.opts.Notifier.Failure(err)
		}
	default:
		rec.Outcome = store.OutcomeFailed
		rec.Message = err.Error()
		log.Error().Err(err).Msg("exportjar: export failed")
		if w.opts.Notifier != nil {
			w.opts.Notifier.Failure(err)
		}
	}

	if w.opts.History != nil {
		// The run context may already be cancelled; the record still goes in.
		if herr := w.opts.History.SaveExport(context.WithoutCancel(ctx), rec); herr != nil {
			log.Warn().Err(herr).Msg("exportjar: history not saved")
		}
	}
}

type nopProgress struct{}

func (nopProgress) Report(int, string) {}
