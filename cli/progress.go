// Package cli wires the sequence core to a terminal: pterm-backed progress,
// notification, and confirmation collaborators, a frame directory watcher,
// and the cloudseq command line app.
package cli

import (
	"context"
	"sync"

	"github.com/pterm/pterm"
	goutils "go.viam.com/utils"

	"github.com/cloudseq/cloudseq/sequence"
)

// termProgress renders export progress as a terminal progress bar.
type termProgress struct {
	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

// NewTermProgress returns a ProgressSink rendering a pterm progress bar.
func NewTermProgress() sequence.ProgressSink {
	return &termProgress{}
}

func (p *termProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("exporting frames").
		Start()
	if err != nil {
		return
	}
	p.bar = bar
}

func (p *termProgress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *termProgress) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_, err := p.bar.Stop()
		goutils.UncheckedError(err)
		p.bar = nil
	}
}

// termNotifier prints blocking-style success and failure notices.
type termNotifier struct{}

// NewTermNotifier returns a Notifier printing with pterm.
func NewTermNotifier() sequence.Notifier {
	return termNotifier{}
}

func (termNotifier) Info(message string) {
	pterm.Success.Println(message)
}

func (termNotifier) Error(message string) {
	pterm.Error.Println(message)
}

// termConfirmer asks yes/no questions interactively.
type termConfirmer struct{}

// NewTermConfirmer returns a Confirmer prompting on the terminal.
func NewTermConfirmer() sequence.Confirmer {
	return termConfirmer{}
}

func (termConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return pterm.DefaultInteractiveConfirm.Show(message)
}
