package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/olivia646/spotify-concerts/internal/concerts"
)

// Loader runs a resolution for a city.
type Loader func(ctx context.Context, city string) (*concerts.Result, error)

// App is the terminal concert browser
type App struct {
	app     *tview.Application
	header  *tview.TextView
	list    *tview.List
	detail  *tview.TextView
	summary *tview.TextView
	city    *tview.InputField
	status  *tview.TextView
	pages   *tview.Flex

	load Loader

	// mu guards the fields below, written by the loader goroutine
	mu         sync.Mutex
	current    []concerts.Concert
	cityName   string
	cancelLoad context.CancelFunc

	ctx context.Context
}

// New creates a browser that fetches concerts with load, starting at city.
func New(load Loader, city string) *App {
	a := &App{
		app:      tview.NewApplication(),
		load:     load,
		cityName: city,
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	// Concert list
	a.list = tview.NewList().
		ShowSecondaryText(true).
		SetHighlightFullLine(true)
	a.list.SetBorder(true).
		SetTitle(" Concerts ").
		SetTitleAlign(tview.AlignLeft)
	a.list.SetChangedFunc(func(index int, _, _ string, _ rune) {
		a.showDetail(index)
	})

	// Selected concert
	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.detail.SetBorder(true).
		SetTitle(" Details ").
		SetTitleAlign(tview.AlignLeft)

	// Per-artist outcome counts
	a.summary = tview.NewTextView().
		SetDynamicColors(true)
	a.summary.SetBorder(true).
		SetTitle(" Artists ").
		SetTitleAlign(tview.AlignLeft)

	a.city = tview.NewInputField().
		SetLabel(" City: ").
		SetFieldWidth(30)
	a.city.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			if city := strings.TrimSpace(a.city.GetText()); city != "" {
				a.mu.Lock()
				a.cityName = city
				a.mu.Unlock()
				a.reload()
			}
		}
		a.app.SetFocus(a.list)
	})

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  r:reload  c:change city  j/k:move[-]")

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.detail, 0, 2, false).
		AddItem(a.summary, 8, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.list, 0, 3, true).
		AddItem(right, 0, 2, false)

	a.pages = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 1, false).
		AddItem(body, 0, 1, true).
		AddItem(a.city, 1, 1, false).
		AddItem(a.status, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(a.pages, true).SetFocus(a.list)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if a.app.GetFocus() == a.city {
		return event
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case 'r', 'R':
		a.reload()
		return nil
	case 'c', 'C':
		a.mu.Lock()
		a.city.SetText(a.cityName)
		a.mu.Unlock()
		a.app.SetFocus(a.city)
		return nil
	case 'j':
		return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	case 'k':
		return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	}
	return event
}

// Run loads the first city and blocks until the user quits.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	a.reload()

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Stop stops the TUI application
func (a *App) Stop() {
	a.mu.Lock()
	if a.cancelLoad != nil {
		a.cancelLoad()
	}
	a.mu.Unlock()
	a.app.Stop()
}

// reload starts a resolution in the background, cancelling any running one.
func (a *App) reload() {
	parent := a.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	a.mu.Lock()
	if a.cancelLoad != nil {
		a.cancelLoad()
	}
	a.cancelLoad = cancel
	city := a.cityName
	a.mu.Unlock()

	a.header.SetText(headerText(city, true, 0))

	go func() {
		result, err := a.load(ctx, city)
		if ctx.Err() != nil {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.apply(city, result, err)
		})
	}()
}

// apply renders a finished resolution. Runs on the UI goroutine.
func (a *App) apply(city string, result *concerts.Result, err error) {
	a.mu.Lock()
	if err != nil || result == nil {
		a.current = nil
	} else {
		a.current = result.Concerts
	}
	list := a.current
	a.mu.Unlock()

	a.header.SetText(headerText(city, false, len(list)))
	a.summary.SetText(summaryText(result, err))

	a.list.Clear()
	for _, c := range list {
		main, secondary := listItem(c)
		a.list.AddItem(main, secondary, 0, nil)
	}
	if len(list) == 0 {
		a.detail.SetText("[gray]No concerts found[-]")
		return
	}
	a.list.SetCurrentItem(0)
	a.showDetail(0)
}

func (a *App) showDetail(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.current) {
		return
	}
	a.detail.SetText(detailText(a.current[index]))
	a.detail.ScrollToBeginning()
}

func headerText(city string, loading bool, count int) string {
	if loading {
		return fmt.Sprintf("[yellow]Finding concerts near %s...[-]", tview.Escape(city))
	}
	noun := "concerts"
	if count == 1 {
		noun = "concert"
	}
	return fmt.Sprintf("[white::b]%d %s near %s[-:-:-]", count, noun, tview.Escape(city))
}

// listItem returns the main and secondary list lines for a concert.
func listItem(c concerts.Concert) (string, string) {
	date := c.FormattedDate
	if date == "" {
		date = "Date TBA"
	}
	main := fmt.Sprintf("%s  %s", date, c.Artist.Name)
	secondary := fmt.Sprintf("%s @ %s", truncate(c.Name, 48), c.Venue)
	return tview.Escape(main), tview.Escape(secondary)
}

func detailText(c concerts.Concert) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n\n", tview.Escape(c.Name)))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(c.Artist.Name)))
	sb.WriteString(fmt.Sprintf("%s\n", tview.Escape(c.Venue)))
	if c.FormattedDate != "" {
		sb.WriteString(fmt.Sprintf("%s\n", tview.Escape(c.FormattedDate)))
	}
	if c.URL != "" {
		sb.WriteString(fmt.Sprintf("\n[blue]%s[-]", tview.Escape(c.URL)))
	}
	return sb.String()
}

// summaryText counts artists by final state, or shows the error.
func summaryText(result *concerts.Result, err error) string {
	if err != nil {
		return fmt.Sprintf("[red]%s[-]", tview.Escape(err.Error()))
	}
	if result == nil || len(result.Outcomes) == 0 {
		return "[gray]No artists checked[-]"
	}

	counts := make(map[concerts.ArtistState]int)
	for _, o := range result.Outcomes {
		counts[o.State]++
	}

	rows := []struct {
		state concerts.ArtistState
		label string
		color string
	}{
		{concerts.StateFetched, "with events", "green"},
		{concerts.StateNoMatch, "not in catalog", "gray"},
		{concerts.StateRateLimited, "rate limited", "yellow"},
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checked: %d\n", len(result.Outcomes)))
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("[%s]%s: %d[-]\n", row.color, row.label, counts[row.state]))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
