package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	ItemListView
	ConfirmView
	ProgressView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	ops        tasks.AccountOperations
	logger     *log.Logger
	view       ViewState
	collection Collection
	width      int
	height     int
	menu       list.Model
	items      list.Model
	loading    bool
	notice     string
	warning    error
	progress   tasks.ProgressUpdate
	progressCh chan tasks.ProgressUpdate
	resultCh   chan tasks.BulkResult
	result     *tasks.BulkResult
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model over ops.
func NewModel(ctx context.Context, ops tasks.AccountOperations, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	menu := list.New(menuItems(), newDelegate(), 0, 0)
	menu.Title = "ytdash"
	menu.SetFilteringEnabled(false)

	return &Model{
		ctx:    ctx,
		ops:    ops,
		logger: logger,
		view:   MenuView,
		menu:   menu,
		items:  list.New(nil, newDelegate(), 0, 0),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init has nothing to fetch until a collection is picked.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		m.items.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ItemListView:
			return m.handleItemKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ProgressView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgItemsFetched:
		data := msg.data.(itemsFetched)
		m.loading = false
		if shared.IsAuthError(data.err) {
			m.err = data.err
			return m, nil
		}
		m.warning = data.err
		if data.err != nil {
			m.logger.Warn("listing incomplete", "collection", data.collection, "error", data.err)
		}
		m.notice = data.notice
		m.collection = data.collection
		m.items.SetItems(data.items)
		m.items.ResetSelected()
		m.items.Title = m.listTitle()
		m.view = ItemListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressCh, m.resultCh)

	case MsgBulkComplete:
		result := msg.data.(tasks.BulkResult)
		m.result = &result
		m.progressCh, m.resultCh = nil, nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return m.renderError()
	}
	if m.loading {
		return styles.title.Render(fmt.Sprintf("Loading %s...", strings.ToLower(m.collection.String())))
	}

	switch m.view {
	case MenuView:
		return m.renderMenu()
	case ItemListView:
		return m.renderItemList()
	case ConfirmView:
		return m.renderConfirm()
	case ProgressView:
		return m.renderProgress()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.menu.SelectedItem().(collectionItem); ok {
			return m, m.load(item.collection)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleItemKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.items.SettingFilter() {
		var cmd tea.Cmd
		m.items, cmd = m.items.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.items.IsFiltered() {
			m.items.ResetFilter()
			return m, nil
		}
		m.view = MenuView
		m.notice, m.warning = "", nil
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.toggleCurrent()
		return m, nil
	case key.Matches(msg, m.keys.all):
		m.toggleAll()
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.load(m.collection)
	case key.Matches(msg, m.keys.enter):
		if m.collection.action() != "" && len(m.selectedIDs()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		ids := m.selectedIDs()
		if m.collection == Saved {
			m.loading = true
			return m, m.exclude(ids)
		}
		m.view = ProgressView
		m.progress = tasks.ProgressUpdate{Total: len(ids)}
		return m, m.startBulk(ids)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = ItemListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload), key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.back):
		m.result = nil
		return m, m.load(m.collection)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menu, cmd = m.menu.Update(msg)
	case ItemListView:
		m.items, cmd = m.items.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleCurrent() {
	current, ok := m.items.SelectedItem().(accountItem)
	if !ok {
		return
	}
	for i, it := range m.items.Items() {
		if item, ok := it.(accountItem); ok && item.id == current.id {
			item.selected = !item.selected
			m.items.SetItem(i, item)
			break
		}
	}
	m.items.Title = m.listTitle()
}

func (m *Model) toggleAll() {
	all := m.items.Items()
	selectAll := len(m.selectedIDs()) < len(all)
	for i, it := range all {
		if item, ok := it.(accountItem); ok {
			item.selected = selectAll
			m.items.SetItem(i, item)
		}
	}
	m.items.Title = m.listTitle()
}

// selectedIDs returns the selected item ids in list order.
func (m *Model) selectedIDs() []string {
	var ids []string
	for _, it := range m.items.Items() {
		if item, ok := it.(accountItem); ok && item.selected {
			ids = append(ids, item.id)
		}
	}
	return ids
}

func (m *Model) listTitle() string {
	title := fmt.Sprintf("%s (%d)", m.collection, len(m.items.Items()))
	if n := len(m.selectedIDs()); n > 0 {
		title = fmt.Sprintf("%s • %d selected", title, n)
	}
	return title
}

func (m *Model) load(c Collection) tea.Cmd {
	m.collection = c
	m.loading = true
	ctx, ops := m.ctx, m.ops
	return func() tea.Msg {
		switch c {
		case Comments:
			comments, err := ops.Comments(ctx)
			return itemsFetchedMsg(c, commentItems(comments), "", err)
		case Likes:
			likes, err := ops.Likes(ctx)
			return itemsFetchedMsg(c, videoItems(likes), "", err)
		case Saved:
			saved, err := ops.Saved(ctx)
			return itemsFetchedMsg(c, playlistItems(saved), "", err)
		default:
			videos, err := ops.Videos(ctx)
			return itemsFetchedMsg(Videos, videoItems(videos), "", err)
		}
	}
}

func (m *Model) exclude(ids []string) tea.Cmd {
	ctx, ops := m.ctx, m.ops
	return func() tea.Msg {
		saved, err := ops.ExcludeSelectedSaved(ctx, ids)
		notice := fmt.Sprintf("Hid %d playlist(s) from this view; they were not deleted on YouTube.", len(ids))
		return itemsFetchedMsg(Saved, playlistItems(saved), notice, err)
	}
}

// startBulk runs the collection's bulk operation in the background and streams its progress.
func (m *Model) startBulk(ids []string) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan tasks.BulkResult, 1)
	m.progressCh, m.resultCh = progress, done

	ctx, ops, c := m.ctx, m.ops, m.collection
	go func() {
		var result tasks.BulkResult
		switch c {
		case Comments:
			result = ops.DeleteSelectedComments(ctx, ids, progress)
		case Likes:
			result = ops.RemoveSelectedLikes(ctx, ids, progress)
		}
		done <- result
		close(progress)
	}()

	return waitForProgress(progress, done)
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan tasks.BulkResult) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return bulkCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderError() string {
	msg := fmt.Sprintf("Error: %v", m.err)
	if shared.IsAuthError(m.err) {
		msg += "\n\nRun `ytdash auth login` to sign in again."
	}
	return styles.err.Render(msg + "\n\nPress q to quit")
}

func (m *Model) renderMenu() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderItemList() string {
	var banners []string
	if m.warning != nil {
		banners = append(banners, styles.warn.Render("Some items could not be loaded; the list may be incomplete."))
	}
	if m.notice != "" {
		banners = append(banners, styles.ok.Render(m.notice))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.reload, m.keys.quit}
	if verb := m.collection.action(); verb != "" {
		act := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", strings.ToLower(verb)+" selected"))
		helpKeys = append([]key.Binding{m.keys.toggle, m.keys.all, act}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	body := fmt.Sprintf("%s\n\n%s", m.items.View(), helpView)
	if len(banners) > 0 {
		body = strings.Join(banners, "\n") + "\n\n" + body
	}
	return body
}

func (m *Model) renderConfirm() string {
	n := len(m.selectedIDs())
	title := styles.title.Render(fmt.Sprintf("%s %d selected item(s)?", m.collection.action(), n))

	info := fmt.Sprintf("\nCollection: %s\n", m.collection)
	if m.collection == Saved {
		info += styles.help.Render("Playlists are only hidden from this view, not deleted on YouTube.") + "\n"
	} else {
		info += styles.warn.Render("This cannot be undone.") + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderProgress() string {
	title := styles.title.Render(fmt.Sprintf("%s (%d/%d)", m.progress.Phase, m.progress.Step, m.progress.Total))
	if m.progress.Step == 0 {
		title = styles.title.Render("Working...")
	}
	return fmt.Sprintf("%s\n\n%s", title, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to reload, q to quit")
	}

	succeeded := len(m.result.Succeeded())
	total := len(m.result.Attempted)
	title := styles.ok.Render(fmt.Sprintf("✓ %d of %d succeeded", succeeded, total))

	var failed string
	if len(m.result.Failed) > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("%d failed and were left in place:", len(m.result.Failed)))
		for _, id := range m.result.Attempted {
			if err, ok := m.result.Failed[id]; ok {
				failed += fmt.Sprintf("\n  • %s: %v", id, err)
			}
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", title, failed, helpView)
}
