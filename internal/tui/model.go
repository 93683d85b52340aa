// Package tui implements the terminal gallery browser.
package tui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/rs/zerolog"
)

type viewState int

const (
	stateGrid viewState = iota
	stateModal
	stateInput
	stateConfirmDelete
)

type inputKind int

const (
	inputFilter inputKind = iota
	inputAddTags
	inputRemoveTag
	inputShareUser
)

// pageSizeStep is how much + and - change the page size.
const pageSizeStep = 5

// opDoneMsg reports the end of a gallery operation run as a command.
type opDoneMsg struct {
	op  string
	err error
}

// Options configures the browser.
type Options struct {
	Mode image.Mode
}

// Model is the bubbletea model of the browser. Gallery operations block on
// the network, so each runs as a tea.Cmd; the store and navigator resolve
// overlapping requests themselves.
type Model struct {
	ctx    context.Context
	app    *gallery.App
	buffer *NotificationBuffer
	toasts *ToastController
	log    zerolog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	mode      image.Mode
	state     viewState
	returnTo  viewState
	inputKind inputKind
	cursor    int
	pending   int
	width     int
	height    int
}

// New creates a browser over app. Notifications pushed into buffer are
// shown as toasts.
func New(ctx context.Context, app *gallery.App, buffer *NotificationBuffer, opts Options, log zerolog.Logger) *Model {
	if opts.Mode == "" {
		opts.Mode = image.ModePersonal
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.LoadingStyle

	in := textinput.New()
	in.CharLimit = 200

	return &Model{
		ctx:     ctx,
		app:     app,
		buffer:  buffer,
		toasts:  NewToastController(),
		log:     log.With().Str("component", "tui").Logger(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		input:   in,
		mode:    opts.Mode,
		state:   stateGrid,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.buffer.WaitForSignal(),
		m.initialize(),
	)
}

func (m *Model) initialize() tea.Cmd {
	mode := m.mode
	return m.do("initialize", func(ctx context.Context) error {
		return m.app.Store.Initialize(ctx, mode)
	})
}

// do runs fn off the update loop and reports back with an opDoneMsg.
func (m *Model) do(op string, fn func(context.Context) error) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case opDoneMsg:
		m.pending = max(m.pending-1, 0)
		return m, m.afterOp(msg)

	case drainNotificationsMsg:
		for _, n := range m.buffer.Drain() {
			m.toasts.Push(n)
		}
		return m, tea.Batch(m.buffer.WaitForSignal(), m.startToastTicks())

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.ticking = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case stateInput:
			return m.handleInputKey(msg)
		case stateConfirmDelete:
			return m.handleConfirmKey(msg)
		case stateModal:
			return m.handleModalKey(msg)
		default:
			return m.handleGridKey(msg)
		}
	}

	return m, nil
}

func (m *Model) startToastTicks() tea.Cmd {
	if !m.toasts.HasToasts() || m.toasts.ticking {
		return nil
	}
	m.toasts.ticking = true
	return scheduleToastTick()
}

// afterOp reconciles view state with the gallery after an operation.
// Gallery failures were already published as notifications.
func (m *Model) afterOp(msg opDoneMsg) tea.Cmd {
	if m.state == stateModal && m.app.Navigator.Phase() == gallery.PhaseClosed {
		m.state = stateGrid
	}
	m.cursor = clampCursor(m.cursor, len(m.app.Store.Snapshot().Images))

	if msg.err == nil {
		return nil
	}

	var f *gallery.Failure
	if errors.As(msg.err, &f) || errors.Is(msg.err, context.Canceled) {
		return nil
	}

	m.log.Warn().Err(msg.err).Str("op", msg.op).Msg("operation failed")
	m.toasts.Push(notify.Notification{Level: notify.LevelError, Message: msg.err.Error()})
	return m.startToastTicks()
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(cursor, 0), n-1)
}

// cursorRecord returns the record under the cursor in the loaded page.
func (m *Model) cursorRecord() (image.Record, bool) {
	images := m.app.Store.Snapshot().Images
	if m.cursor < 0 || m.cursor >= len(images) {
		return image.Record{}, false
	}
	return images[m.cursor], true
}

func (m *Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.app.Store
	snap := store.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(snap.Images))

	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(snap.Images))

	case key.Matches(msg, m.keys.PrevPage):
		if snap.Pagination.Page == 0 {
			return m, nil
		}
		page := int(snap.Pagination.Page) - 1
		m.cursor = 0
		return m, m.do("previous page", func(ctx context.Context) error {
			return store.SetPage(ctx, page)
		})

	case key.Matches(msg, m.keys.NextPage):
		if int(snap.Pagination.Page)+1 >= int(snap.Pagination.TotalPages()) {
			return m, nil
		}
		page := int(snap.Pagination.Page) + 1
		m.cursor = 0
		return m, m.do("next page", func(ctx context.Context) error {
			return store.SetPage(ctx, page)
		})

	case key.Matches(msg, m.keys.NextMode):
		i := slices.Index(image.Modes, m.mode)
		m.mode = image.Modes[(i+1)%len(image.Modes)]
		m.cursor = 0
		return m, m.initialize()

	case key.Matches(msg, m.keys.Filter):
		return m, m.openInput(inputFilter, "filter: ", snap.Filter)

	case key.Matches(msg, m.keys.GroupSelect):
		if m.mode.Editable() {
			store.ToggleGroupSelect()
		}

	case key.Matches(msg, m.keys.Select):
		if rec, ok := m.cursorRecord(); ok && snap.GroupSelect {
			store.ToggleSelect(rec.ID)
		}

	case key.Matches(msg, m.keys.SelectAll):
		if snap.GroupSelect {
			store.ToggleSelectAll()
		}

	case key.Matches(msg, m.keys.Back):
		store.ClearSelection()

	case key.Matches(msg, m.keys.Delete):
		if m.mode.Editable() && snap.Selection.Len() > 0 {
			m.state = stateConfirmDelete
		}

	case key.Matches(msg, m.keys.Open):
		rec, ok := m.cursorRecord()
		if !ok {
			return m, nil
		}
		m.state = stateModal
		return m, m.do("open", func(ctx context.Context) error {
			return m.app.Navigator.Open(ctx, rec.ID)
		})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.do("refresh", store.FetchPage)

	case key.Matches(msg, m.keys.Bigger), key.Matches(msg, m.keys.Smaller):
		size := int(snap.Pagination.PageSize)
		if key.Matches(msg, m.keys.Bigger) {
			size += pageSizeStep
		} else {
			size = max(size-pageSizeStep, 1)
		}
		m.cursor = 0
		return m, m.do("page size", func(ctx context.Context) error {
			return store.SetPageSize(ctx, size)
		})
	}

	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state = stateGrid
	if msg.String() != "y" {
		return m, nil
	}
	m.cursor = 0
	return m, m.do("delete", m.app.Store.DeleteSelected)
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := m.app.Navigator

	switch {
	case key.Matches(msg, m.keys.CloseModal):
		nav.Close()
		m.state = stateGrid
		m.cursor = clampCursor(m.cursor, len(m.app.Store.Snapshot().Images))

	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Prev), key.Matches(msg, m.keys.Next):
		name := msg.String()
		dir := gallery.Next
		if key.Matches(msg, m.keys.Prev) {
			dir = gallery.Prev
		}
		return m, m.do("navigate", func(ctx context.Context) error {
			if handled, err := nav.Key(ctx, name); handled {
				return err
			}
			return nav.Button(ctx, dir)
		})

	case key.Matches(msg, m.keys.Like):
		return m, m.do("like", nav.ToggleLike)

	case key.Matches(msg, m.keys.AddTags):
		if m.mode.Editable() {
			return m, m.openInput(inputAddTags, "tags: ", "")
		}

	case key.Matches(msg, m.keys.RemoveTag):
		if m.mode.Editable() {
			return m, m.openInput(inputRemoveTag, "remove tag: ", "")
		}

	case key.Matches(msg, m.keys.Public), key.Matches(msg, m.keys.Link):
		rec, ok := nav.Current()
		if !ok || !m.mode.Editable() {
			return m, nil
		}
		draft := gallery.NewShareDraft(rec)
		if key.Matches(msg, m.keys.Public) {
			draft.IsPublic = !draft.IsPublic
		} else {
			draft.SharedByLink = !draft.SharedByLink
		}
		return m, m.do("share", func(ctx context.Context) error {
			return m.applySharing(ctx, draft)
		})

	case key.Matches(msg, m.keys.ShareUser):
		if m.mode.Editable() {
			return m, m.openInput(inputShareUser, "share with: ", "")
		}
	}

	return m, nil
}

// applySharing writes the draft and reloads the shown image so the viewer
// reflects the new state.
func (m *Model) applySharing(ctx context.Context, draft *gallery.ShareDraft) error {
	if err := m.app.Share.SetSharing(ctx, draft.ImageID, draft.Sharing()); err != nil {
		return err
	}
	return m.app.Navigator.Open(ctx, draft.ImageID)
}

func (m *Model) openInput(kind inputKind, prompt, value string) tea.Cmd {
	m.returnTo = m.state
	m.state = stateInput
	m.inputKind = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := m.inputKind
		m.closeInput()
		return m, m.submitInput(kind, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.state = m.returnTo
}

func (m *Model) submitInput(kind inputKind, value string) tea.Cmd {
	nav := m.app.Navigator

	switch kind {
	case inputFilter:
		m.cursor = 0
		return m.do("filter", func(ctx context.Context) error {
			return m.app.Store.SetFilter(ctx, value)
		})
	case inputAddTags:
		return m.do("add tags", func(ctx context.Context) error {
			return nav.AddTags(ctx, value)
		})
	case inputRemoveTag:
		return m.do("remove tag", func(ctx context.Context) error {
			return nav.RemoveTag(ctx, value)
		})
	case inputShareUser:
		rec, ok := nav.Current()
		if !ok || value == "" {
			return nil
		}
		return m.do("share with user", func(ctx context.Context) error {
			draft := gallery.NewShareDraft(rec)
			if err := m.app.Share.AddUser(ctx, draft, value); err != nil {
				return err
			}
			return m.applySharing(ctx, draft)
		})
	}
	return nil
}
