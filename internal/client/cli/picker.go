package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/search"
)

// Picker lets the user search a category and choose one result. ok is
// false when the user cancelled.
type Picker interface {
	Pick(ctx context.Context, category models.Category, date string, skip func(search.Result) bool) (r search.Result, ok bool, err error)
}

type pickerBase struct {
	fetcher   search.Fetcher
	catalogue models.Catalogue
	opts      []search.Option
}

func (b pickerBase) aggregator(skip func(search.Result) bool) *search.Aggregator {
	opts := make([]search.Option, 0, len(b.opts)+1)
	opts = append(opts, b.opts...)
	if skip != nil {
		opts = append(opts, search.WithSkip(skip))
	}
	return search.NewAggregator(b.fetcher, b.catalogue, opts...)
}

// watchViews returns a channel that is ready whenever agg's view changed
// since the last receive.
func watchViews(agg *search.Aggregator) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	off := agg.OnView(func(search.View) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, off
}

func newPicker(a *App, f search.Fetcher) Picker {
	base := pickerBase{
		fetcher:   f,
		catalogue: a.catalogue,
		opts: []search.Option{
			search.WithDelay(a.cfg.SearchDebounce),
			search.WithParallelism(a.cfg.SearchParallelism),
			search.WithScheduler(search.RealScheduler()),
			search.WithLogger(a.logger),
		},
	}
	if a.tty {
		return &teaPicker{pickerBase: base, in: a.rawIn, out: a.out, styles: a.style}
	}
	return &linePicker{pickerBase: base, in: a.in, out: a.out}
}

// linePicker searches one typed line at a time and picks by number.
type linePicker struct {
	pickerBase
	in  interface{ ReadString(byte) (string, error) }
	out io.Writer
}

func (p *linePicker) Pick(ctx context.Context, category models.Category, date string, skip func(search.Result) bool) (search.Result, bool, error) {
	agg := p.aggregator(skip)
	changed, off := watchViews(agg)
	defer off()
	defer agg.Close()

	if err := agg.Open(ctx, category, date); err != nil {
		return search.Result{}, false, err
	}
	for {
		q, err := p.ask(fmt.Sprintf("Search %s (blank to cancel)", category))
		if err != nil {
			return search.Result{}, false, err
		}
		if q == "" {
			return search.Result{}, false, nil
		}
		if err := agg.Input(q); err != nil {
			return search.Result{}, false, err
		}
		v, err := awaitResults(ctx, agg, changed)
		if err != nil {
			return search.Result{}, false, err
		}
		if v.Err != nil {
			fmt.Fprintln(p.out, "Search failed:", client.Reason(v.Err))
			continue
		}
		if len(v.Results) == 0 {
			fmt.Fprintln(p.out, "No results.")
			continue
		}
		for i, r := range v.Results {
			fmt.Fprintf(p.out, "%2d. %s", i+1, r.Title)
			if r.Subtitle != "" {
				fmt.Fprintf(p.out, " - %s", r.Subtitle)
			}
			fmt.Fprintln(p.out)
		}

		choice, err := p.ask("Pick a number (blank to search again)")
		if err != nil {
			return search.Result{}, false, err
		}
		if choice == "" {
			continue
		}
		n, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(p.out, "Not a number.")
			continue
		}
		r, err := agg.Select(n - 1)
		if errors.Is(err, search.ErrNoSelection) {
			fmt.Fprintln(p.out, "No such result.")
			continue
		}
		if err != nil {
			return search.Result{}, false, err
		}
		return r, true, nil
	}
}

func (p *linePicker) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt+"\n> ")
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// awaitResults blocks until the pending search has been displayed.
func awaitResults(ctx context.Context, agg *search.Aggregator, changed <-chan struct{}) (search.View, error) {
	for {
		v := agg.View()
		switch v.State {
		case search.Displaying:
			return v, nil
		case search.Closed:
			return v, search.ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
}

// teaPicker is the full-screen picker used on a terminal.
type teaPicker struct {
	pickerBase
	in     io.Reader
	out    io.Writer
	styles func() Styles
}

func (p *teaPicker) Pick(ctx context.Context, category models.Category, date string, skip func(search.Result) bool) (search.Result, bool, error) {
	agg := p.aggregator(skip)
	changed, off := watchViews(agg)
	defer off()
	defer agg.Close()

	if err := agg.Open(ctx, category, date); err != nil {
		return search.Result{}, false, err
	}
	done := make(chan struct{})
	defer close(done)

	m := newPickerModel(agg, changed, done, p.styles())
	final, err := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	).Run()
	if err != nil {
		if ctx.Err() != nil {
			return search.Result{}, false, ctx.Err()
		}
		return search.Result{}, false, err
	}
	fm, _ := final.(pickerModel)
	if fm.chosen == nil {
		return search.Result{}, false, nil
	}
	return *fm.chosen, true, nil
}

type viewChangedMsg struct{}

type pickerModel struct {
	agg     *search.Aggregator
	input   textinput.Model
	view    search.View
	changed <-chan struct{}
	done    <-chan struct{}
	styles  Styles
	chosen  *search.Result
}

func newPickerModel(agg *search.Aggregator, changed, done <-chan struct{}, styles Styles) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.Prompt = "> "
	ti.Focus()
	return pickerModel{
		agg:     agg,
		input:   ti,
		view:    agg.View(),
		changed: changed,
		done:    done,
		styles:  styles,
	}
}

func waitForView(changed, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changed:
			return viewChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForView(m.changed, m.done))
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewChangedMsg:
		m.view = m.agg.View()
		return m, waitForView(m.changed, m.done)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.agg.Key(search.KeyEsc)
			return m, tea.Quit
		case tea.KeyUp:
			m.agg.Key(search.KeyUp)
			m.view = m.agg.View()
			return m, nil
		case tea.KeyDown:
			m.agg.Key(search.KeyDown)
			m.view = m.agg.View()
			return m, nil
		case tea.KeyEnter:
			if r, ok := m.agg.Key(search.KeyEnter); ok {
				m.chosen = &r
				return m, tea.Quit
			}
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		_ = m.agg.Input(v)
		m.view = m.agg.View()
	}
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Search " + string(m.view.Category)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.view.State {
	case search.Pending, search.Fetching:
		b.WriteString(m.styles.Muted.Render("searching..."))
		b.WriteString("\n")
	case search.Displaying:
		switch {
		case m.view.Err != nil:
			b.WriteString(m.styles.Error.Render("search failed: " + client.Reason(m.view.Err)))
			b.WriteString("\n")
		case len(m.view.Results) == 0:
			b.WriteString(m.styles.Muted.Render("no results"))
			b.WriteString("\n")
		}
		for i, r := range m.view.Results {
			title := r.Title
			cursor := "  "
			if i == m.view.Highlight {
				title = m.styles.Highlight.Render(title)
				cursor = "> "
			}
			b.WriteString(cursor + title)
			if r.Subtitle != "" {
				b.WriteString("  " + m.styles.Muted.Render(r.Subtitle))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("up/down move, enter select, esc cancel"))
	return b.String()
}
