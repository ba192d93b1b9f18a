package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/nicolasrp432/PlaywrongIa/internal/store"
	"github.com/nicolasrp432/PlaywrongIa/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogFile = "./tmp/playwrong-tui.log"

// TUI launches the interactive terminal catalog.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.svc == nil {
		return fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("%w: the TUI needs an interactive terminal, use the catalog commands instead", shared.ErrInvalidInput)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.store = store.New(r.svc, fileLogger)

	model := ui.NewModel(ctx, r.store)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
