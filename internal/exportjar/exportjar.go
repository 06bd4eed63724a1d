// Package exportjar runs the interactive jar export flow: pick a workspace
// folder, pick a main class, pick classpath entries, then have the language
// server write the jar.
package exportjar

import (
	"context"
	"errors"

	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/store"
)

var (
	ErrCancelled         = errors.New("user cancelled")
	ErrNoWorkspaceFolder = errors.New("no workspace folder found")
	ErrNoProject         = errors.New("no project found")
	ErrNoClasspath       = errors.New("no class path found")
	ErrExportFailed      = errors.New("export jar failed")
	ErrBuildFailed       = errors.New("build workspace failed")
)

// Step names one state of the wizard.
type Step int

const (
	StepResolveProject Step = iota
	StepResolveMainMethod
	StepGenerateJar
	StepFinish
)

func (s Step) String() string {
	switch s {
	case StepResolveProject:
		return "RESOLVEPROJECT"
	case StepResolveMainMethod:
		return "RESOLVEMAINMETHOD"
	case StepGenerateJar:
		return "GENERATEJAR"
	case StepFinish:
		return "FINISH"
	}
	return "UNKNOWN"
}

// TransitionKind tags what a step asks the wizard to do next.
type TransitionKind int

const (
	TransitionAdvance TransitionKind = iota
	TransitionBack
	TransitionCancelled
	TransitionFailed
)

// Transition is the result of running one step.
type Transition struct {
	Kind TransitionKind
	Next Step
	Err  error
}

// Advance moves on to next.
func Advance(next Step) Transition { return Transition{Kind: TransitionAdvance, Next: next} }

// Back returns to the previous interactive step.
func Back() Transition { return Transition{Kind: TransitionBack} }

// Cancelled ends the run as cancelled by the user.
func Cancelled() Transition { return Transition{Kind: TransitionCancelled, Err: ErrCancelled} }

// Failed ends the run with err.
func Failed(err error) Transition { return Transition{Kind: TransitionFailed, Err: err} }

// Item is one row of a pick list.
type Item struct {
	Label       string
	Description string
	// Value is what the caller gets back for the row.
	Value  string
	Picked bool
}

// PickRequest describes one interactive list prompt.
type PickRequest struct {
	Title       string
	Placeholder string
	Items       []Item
	Multi       bool
	ShowBack    bool
}

// PickAction is how the user left a prompt.
type PickAction int

const (
	PickAccepted PickAction = iota
	PickBack
	PickDismissed
)

// PickResult holds the selected rows when Action is PickAccepted.
type PickResult struct {
	Action PickAction
	Items  []Item
}

// Prompter shows pick lists. Implementations must return when ctx is done.
type Prompter interface {
	Pick(ctx context.Context, req PickRequest) (PickResult, error)
}

// Progress receives advisory progress updates.
type Progress interface {
	Report(increment int, message string)
}

// Notifier shows the final outcome of a run. Exactly one method is called
// per run.
type Notifier interface {
	Failure(err error)
	Success(path string)
}

// Service is the language server surface the wizard needs.
type Service interface {
	BuildWorkspace(ctx context.Context, full bool) (jdtls.CompileStatus, error)
	GetMainClasses(ctx context.Context, projectURI string) ([]jdtls.MainClass, error)
	GetProjects(ctx context.Context, folderURI string) ([]jdtls.NodeData, error)
	GetClasspaths(ctx context.Context, projectURI, scope string) (jdtls.ClasspathResult, error)
	ExportJar(ctx context.Context, mainClass string, classpaths []string, destination string) (jdtls.ExportResult, error)
}

// History records finished runs.
type History interface {
	SaveExport(ctx context.Context, rec store.ExportRecord) error
}
