package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cardscout/internal/artwork"
	"github.com/csheth/cardscout/internal/format"
	"github.com/csheth/cardscout/internal/margins"
	"github.com/csheth/cardscout/internal/stock"
)

// Catalog answers card lookups.
type Catalog interface {
	Search(ctx context.Context, query string) ([]margins.Candidate, error)
	FetchCard(ctx context.Context, cardID string) (*margins.Card, error)
}

// StockSearcher streams a stock run for one card.
type StockSearcher interface {
	Start(ctx context.Context, cardID string) <-chan stock.Event
}

// ArtworkLoader fetches preview artwork by card name.
type ArtworkLoader interface {
	Load(ctx context.Context, name string) (*artwork.Artwork, error)
}

// ScraperCache is the cached scraper directory behind StockSearcher.
type ScraperCache interface {
	Invalidate()
}

// Config wires runtime dependencies into the TUI program. Artwork may be nil
// to disable previews, Scrapers may be nil when the directory is not cached.
type Config struct {
	Catalog        Catalog
	Stock          StockSearcher
	Artwork        ArtworkLoader
	Scrapers       ScraperCache
	PreviewColumns int
	Logger         *slog.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

type logLine struct {
	at    time.Time
	level slog.Level
	text  string
}

type model struct {
	config Config
	logger *slog.Logger
	stage  stage
	focus  focusArea

	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	logView  viewport.Model
	layout   pageLayout
	jobs     *jobBus
	tracker  jobTracker
	grid     *candidateGrid
	preview  previewPanel
	results  resultsPanel
	logLines []logLine
	logDirty bool

	// cycle identifies the current search, runID the current stock run and
	// previewSeq the current hover. Replies tagged with an older value are
	// dropped.
	cycle      int
	runID      int
	previewSeq int
	cancelRun  context.CancelFunc
	lastQuery  string

	infoMessage  string
	errorMessage string
}

func newModel(config Config) *model {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "› "
	input.CharLimit = 141
	input.Width = 60
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	logView := viewport.New(80, 5)

	preview := newPreviewPanel(config.PreviewColumns)

	return &model{
		config:      config,
		logger:      logger,
		stage:       stageIdle,
		focus:       focusInput,
		input:       input,
		spinner:     spin,
		help:        help.New(),
		keys:        newKeyMap(),
		logView:     logView,
		layout:      newPageLayout(preview.columns),
		jobs:        newJobBus(logger),
		tracker:     newJobTracker(),
		preview:     preview,
		results:     newResultsPanel(),
		infoMessage: "Press enter to submit",
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) busy() bool {
	return m.stage == stageSearching || m.stage == stageStockSearching || m.preview.loading() || m.tracker.running(jobKindCard) > 0
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case jobSignalMsg:
		m.tracker.record(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.tracker.record(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case searchResultMsg:
		return m, m.handleSearchResult(msg)
	case previewResultMsg:
		m.handlePreviewResult(msg)
		return m, nil
	case cardDetailMsg:
		m.handleCardDetail(msg)
		return m, nil
	case stockEventMsg:
		return m, m.handleStockEvent(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	m.layout.Update(width, height, m.grid.height())
	m.preview.resize(m.layout.previewColumns)
	m.results.resize(m.layout.contentWidth, m.layout.resultsHeight)
	m.logView.Width = m.layout.contentWidth + m.layout.previewWidth + 2
	m.logView.Height = m.layout.logHeight
	m.logDirty = true
	inputWidth := m.layout.contentWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	m.input.Width = inputWidth
	m.help.Width = width
}

func (m *model) relayout() {
	if m.layout.windowWidth == 0 {
		return
	}
	m.resize(m.layout.windowWidth, m.layout.windowHeight)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.cancelStockRun("quit")
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Focus) && !m.grid.empty() {
		m.toggleFocus()
		return m, nil
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m *model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.submitQuery()
	case tea.KeyEsc:
		if m.input.Value() != "" {
			m.input.SetValue("")
			return m, nil
		}
		if !m.grid.empty() {
			m.setFocus(focusGrid)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.grid.empty() {
		m.setFocus(focusInput)
		return m.handleInputKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelStockRun("quit")
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m, m.selectCandidate(m.grid.focus)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshStock()
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Clear):
		m.setFocus(focusInput)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.relayout()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m, m.hover(m.grid.move(0, -1))
	case key.Matches(msg, m.keys.Down):
		return m, m.hover(m.grid.move(0, 1))
	case key.Matches(msg, m.keys.Left):
		return m, m.hover(m.grid.move(-1, 0))
	case key.Matches(msg, m.keys.Right):
		return m, m.hover(m.grid.move(1, 0))
	case key.Matches(msg, m.keys.PageUp):
		m.results.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.results.viewport.HalfViewDown()
		return m, nil
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		m.results.viewport, cmd = m.results.viewport.Update(msg)
		return cmd
	case tea.MouseMotion:
		if idx, ok := m.grid.controlAt(msg.X, msg.Y); ok {
			return m.hover(idx)
		}
	case tea.MouseLeft:
		if idx, ok := m.grid.controlAt(msg.X, msg.Y); ok {
			m.setFocus(focusGrid)
			return tea.Batch(m.hover(idx), m.selectCandidate(idx))
		}
	}
	return nil
}

func (m *model) toggleFocus() {
	if m.focus == focusInput {
		m.setFocus(focusGrid)
		return
	}
	m.setFocus(focusInput)
}

func (m *model) setFocus(area focusArea) {
	m.focus = area
	if area == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

// submitQuery starts a new search cycle. Everything the previous cycle put
// on screen is torn down first and its in-flight replies become stale.
func (m *model) submitQuery() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	m.errorMessage = ""
	if query == "" {
		m.errorMessage = "Enter a card name to search."
		return nil
	}
	m.note(slog.LevelInfo, "Card name entered: "+query)

	m.cycle++
	m.cancelStockRun("new search")
	m.runID++
	m.previewSeq++
	m.grid = nil
	m.preview.teardown()
	m.results.reset(nil)
	m.lastQuery = query
	m.stage = stageSearching
	m.infoMessage = fmt.Sprintf("Searching for %q…", query)
	m.relayout()

	if m.config.Catalog == nil {
		m.stage = stageIdle
		m.errorMessage = "No catalog configured."
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(context.Background(), jobKindSearch, searchJob(m.config.Catalog, m.cycle, query)))
}

func (m *model) handleSearchResult(msg searchResultMsg) tea.Cmd {
	if msg.cycle != m.cycle {
		m.logger.Debug("[tui] dropping stale search result", "query", msg.query, "cycle", msg.cycle, "current", m.cycle)
		return nil
	}
	m.stage = stageIdle
	if msg.err != nil {
		m.note(slog.LevelWarn, fmt.Sprintf("Search for %q failed: %v", msg.query, msg.err))
		m.infoMessage = fmt.Sprintf("No cards found for %q.", msg.query)
		return nil
	}
	grid := newCandidateGrid(msg.candidates, m.logger)
	if grid.empty() {
		m.note(slog.LevelInfo, fmt.Sprintf("No cards matched %q", msg.query))
		m.infoMessage = fmt.Sprintf("No cards found for %q.", msg.query)
		return nil
	}
	m.grid = grid
	m.stage = stageDisambiguating
	m.note(slog.LevelInfo, fmt.Sprintf("Found %s for %q", grid.summary(), msg.query))
	m.infoMessage = "Hover to preview, click or press enter to check sellers."
	m.setFocus(focusGrid)
	m.relayout()
	return m.startPreview(grid.focus)
}

// hover moves focus to idx and swaps the preview when it changes.
func (m *model) hover(idx int) tea.Cmd {
	if m.grid.empty() || idx == m.grid.focus {
		return nil
	}
	if prev, ok := m.grid.focused(); ok {
		m.logger.Debug("[preview] hover left", "card", prev.label)
	}
	m.grid.focus = idx
	return m.startPreview(idx)
}

func (m *model) startPreview(idx int) tea.Cmd {
	control, ok := m.grid.control(idx)
	if !ok || m.config.Artwork == nil {
		return nil
	}
	m.previewSeq++
	m.preview.beginLoad(control.label)
	m.logger.Debug("[preview] hover entered", "card", control.label, "seq", m.previewSeq)
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(context.Background(), jobKindPreview, previewJob(m.config.Artwork, m.previewSeq, control.label, m.preview.columns)),
	)
}

func (m *model) handlePreviewResult(msg previewResultMsg) {
	if msg.seq != m.previewSeq {
		m.logger.Debug("[preview] dropping stale artwork", "card", msg.name, "seq", msg.seq, "current", m.previewSeq)
		return
	}
	if msg.err != nil {
		m.preview.teardown()
		m.note(slog.LevelWarn, fmt.Sprintf("No artwork for %s: %v", msg.name, msg.err))
		return
	}
	m.preview.mount(msg.art, msg.rendered, msg.columns)
}

// selectCandidate starts a stock run for the control at idx, cancelling any
// run already in progress.
func (m *model) selectCandidate(idx int) tea.Cmd {
	control, ok := m.grid.control(idx)
	if !ok || m.config.Stock == nil {
		return nil
	}
	m.cancelStockRun("new selection")
	m.runID++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel

	candidate := control.candidate
	m.grid.selected = idx
	m.results.reset(&candidate)
	m.stage = stageStockSearching
	m.infoMessage = fmt.Sprintf("Checking sellers for %s…", candidate.Name)
	m.note(slog.LevelInfo, fmt.Sprintf("Fetching seller info for card ID: %s", candidate.CardID))

	events := m.config.Stock.Start(ctx, candidate.CardID)
	cmds := []tea.Cmd{m.spinner.Tick, waitForStockEvent(m.runID, events)}
	if m.config.Catalog != nil {
		cmds = append(cmds, m.jobs.Start(ctx, jobKindCard, cardDetailJob(m.config.Catalog, m.runID, candidate.CardID)))
	}
	return tea.Batch(cmds...)
}

// refreshStock drops the cached scraper directory and checks the selected
// card again, or the focused one when nothing has been picked yet.
func (m *model) refreshStock() tea.Cmd {
	idx := m.grid.selected
	if idx < 0 {
		idx = m.grid.focus
	}
	if _, ok := m.grid.control(idx); !ok {
		return nil
	}
	if m.config.Scrapers != nil {
		m.config.Scrapers.Invalidate()
	}
	m.note(slog.LevelInfo, "Refreshing seller list")
	return m.selectCandidate(idx)
}

func (m *model) cancelStockRun(reason string) {
	if m.cancelRun == nil {
		return
	}
	m.logger.Info("[stock] cancelling run", "run", m.runID, "reason", reason)
	m.releaseStockRun()
}

// releaseStockRun frees the context of a run that has already ended.
func (m *model) releaseStockRun() {
	if m.cancelRun == nil {
		return
	}
	m.cancelRun()
	m.cancelRun = nil
}

func (m *model) handleCardDetail(msg cardDetailMsg) {
	if msg.runID != m.runID {
		return
	}
	if msg.err != nil {
		m.logger.Warn("[tui] card detail unavailable", "err", msg.err)
		return
	}
	m.results.setDetail(msg.card)
}

func (m *model) handleStockEvent(msg stockEventMsg) tea.Cmd {
	if msg.runID != m.runID {
		if !msg.closed {
			m.logger.Debug("[stock] dropping stale event", "run", msg.runID, "current", m.runID, "scraper", msg.event.ScraperID)
		}
		return nil
	}
	if msg.closed {
		m.releaseStockRun()
		if m.stage == stageStockSearching {
			m.stage = stageIdle
		}
		return nil
	}

	event := msg.event
	m.results.apply(event)
	switch event.Kind {
	case stock.EventStarted:
		m.note(slog.LevelInfo, fmt.Sprintf("Checking %d scrapers", event.Total))
	case stock.EventListing:
		if event.Listing != nil {
			m.note(slog.LevelInfo, fmt.Sprintf("%s has %d in stock at %s", event.ScraperID, event.Listing.Stock, format.Price(*event.Listing)))
		}
	case stock.EventOutOfStock:
		m.note(slog.LevelInfo, format.OutOfStockNotice(event.ScraperID))
	case stock.EventDone:
		m.stage = stageIdle
		m.infoMessage = fmt.Sprintf("%d of %d sellers have %s in stock.", event.Summary.InStock, event.Summary.Checked, m.results.card.Name)
	case stock.EventCancelled:
		m.stage = stageIdle
		m.note(slog.LevelInfo, "Task was cancelled")
	}
	return waitForStockEvent(msg.runID, msg.events)
}

// note records a line in both the log file and the on-screen session log.
func (m *model) note(level slog.Level, text string) {
	m.logger.Log(context.Background(), level, "[tui] "+text)
	m.logLines = append(m.logLines, logLine{at: time.Now(), level: level, text: text})
	if extra := len(m.logLines) - sessionLogLimit; extra > 0 {
		m.logLines = append([]logLine(nil), m.logLines[extra:]...)
	}
	m.logDirty = true
}

func (m *model) refreshLogIfDirty() {
	if !m.logDirty {
		return
	}
	lines := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		stamp := helperStyle.Render(line.at.Format("15:04:05"))
		text := line.text
		if line.level >= slog.LevelWarn {
			text = warnStyle.Render(text)
		}
		lines = append(lines, stamp+" "+text)
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()
	m.logDirty = false
}
