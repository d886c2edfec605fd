package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// App represents the main application structure
type App struct {
	model   Model
	program *tea.Program
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
}

// Config holds UI configuration
type Config struct {
	Theme       string
	TableHeight int
	NoColor     bool
}

// DefaultConfig returns the default UI configuration
var DefaultConfig = Config{
	Theme:       "dark",
	TableHeight: 20,
}

// NewApp creates a new viewer over data; reload, when set, is bound to
// the refresh key
func NewApp(ctx context.Context, cfg Config, data Data, reload ReloadFunc, opts ...tea.ProgramOption) *App {
	ctx, cancel := context.WithCancel(ctx)

	model := NewModel(cfg, data, reload)

	app := &App{
		model:  model,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	app.program = tea.NewProgram(model, opts...)

	return app
}

// Start runs the viewer until the user quits or the context is cancelled
func (a *App) Start() error {
	defer a.cancel()
	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Stop gracefully shuts down the application
func (a *App) Stop() error {
	if a.program != nil {
		a.program.Quit()
	}
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}

// UpdateData sends a fresh report to the UI
func (a *App) UpdateData(data Data) {
	if a.program != nil {
		a.program.Send(DataUpdateMsg{Data: data})
	}
}

// ReportError shows a failed refresh in the status bar
func (a *App) ReportError(err error) {
	if a.program != nil {
		a.program.Send(ErrorMsg{Error: err})
	}
}

// IsRunning returns true if the application is currently running
func (a *App) IsRunning() bool {
	return a.ctx.Err() == nil
}

// GetConfig returns the current configuration
func (a *App) GetConfig() Config {
	return a.config
}
