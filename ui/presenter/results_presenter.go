package presenter

import (
	"sync"
	"time"
)

// Summary is what the results screen shows once the session concluded.
type Summary struct {
	SessionID     string
	ProctoredTime time.Duration
	ResumeURL     string
}

// ResultsView shows the results screen.
type ResultsView interface {
	ShowResults(s Summary)
}

// ResultsPresenter owns the results surface. Closing it unmounts the
// surface, which releases every capture resource, then runs onClosed.
type ResultsPresenter struct {
	view     ResultsView
	unmount  func()
	onClosed func()
	once     sync.Once
}

func NewResultsPresenter(view ResultsView, unmount, onClosed func()) *ResultsPresenter {
	return &ResultsPresenter{view: view, unmount: unmount, onClosed: onClosed}
}

func (p *ResultsPresenter) Show(s Summary) {
	if p != nil && p.view != nil {
		p.view.ShowResults(s)
	}
}

// Close is idempotent.
func (p *ResultsPresenter) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		if p.unmount != nil {
			p.unmount()
		}
		if p.onClosed != nil {
			p.onClosed()
		}
	})
}
