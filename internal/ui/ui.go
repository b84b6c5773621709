package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ItemListView
	ConfirmView
	ArchiveView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        models.ArchiveReader
	archiver     *tasks.Archiver
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	itemList     list.Model
	selected     *models.Playlist
	order        models.Order
	progressChan chan tasks.ProgressUpdate
	done         chan archiveComplete
	progress     tasks.ProgressUpdate
	result       *tasks.ArchiveResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model reading from store. A nil archiver disables re-archiving.
func NewModel(ctx context.Context, store models.ArchiveReader, archiver *tasks.Archiver) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		store:        store,
		archiver:     archiver,
		playlistList: newList(nil, "Archived Playlists", 0, 0),
		itemList:     newList(nil, "Items", 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by loading archived playlists.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.itemList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ItemListView:
			return m.handleItemListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsLoaded:
		data := msg.data.(playlistsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.playlists = data.playlists
		m.playlistList = newList(playlistItems(data.playlists), "Archived Playlists", m.width-4, m.height-8)
		return m, nil

	case MsgItemsLoaded:
		data := msg.data.(itemsLoaded)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = &data.playlist
		m.order = data.order
		m.itemList = newList(entryItems(data.entries), fmt.Sprintf("Items in '%s' (%s)", data.playlist.Title, data.order), m.width-4, m.height-8)
		m.view = ItemListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgArchiveComplete:
		data := msg.data.(archiveComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ItemListView:
		return m.renderItemList()
	case ConfirmView:
		return m.renderConfirm()
	case ArchiveView:
		return m.renderArchive()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil || m.playlistList.FilterState() == list.Filtering {
		if key.Matches(msg, m.keys.quit) && m.err != nil {
			return m, tea.Quit
		}
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.loadItems(pl.playlist, models.Ascending)
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleItemListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.itemList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.itemList.FilterState() == list.FilterApplied {
			return m.updateLists(msg)
		}
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.reverse):
		next := models.Descending
		if m.order == models.Descending {
			next = models.Ascending
		}
		return m, m.loadItems(*m.selected, next)
	case key.Matches(msg, m.keys.archive):
		if m.archiver != nil {
			m.view = ConfirmView
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = ItemListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ArchiveView
		return m, m.startArchive()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, m.loadPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case ItemListView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.store.ListPlaylists(m.ctx)
		return playlistsLoadedMsg(playlists, err)
	}
}

func (m *Model) loadItems(playlist models.Playlist, order models.Order) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.store.ListItems(m.ctx, playlist.ID, order)
		return itemsLoadedMsg(playlist, entries, order, err)
	}
}

func (m *Model) startArchive() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan archiveComplete, 1)
	progress, done, playlistID := m.progressChan, m.done, m.selected.ID

	go func() {
		result, err := m.archiver.ArchivePlaylist(m.ctx, playlistID, progress)
		done <- archiveComplete{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress blocks until the next progress update or, once the channel closes, the result.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			res := <-done
			return archiveCompleteMsg(res.result, res.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if len(m.playlists) == 0 {
		return fmt.Sprintf("%s\n\n%s", styles.warn.Render("No playlists archived yet. Run `ytarchive archive --id <playlist>` first."), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderItemList() string {
	helpKeys := []key.Binding{m.keys.reverse, m.keys.back, m.keys.quit}
	if m.archiver != nil {
		helpKeys = append([]key.Binding{m.keys.archive}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.itemList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Archive '%s' now?", m.selected.Title))
	info := fmt.Sprintf("\nPlaylist: %s\nStored items: %d\n", m.selected.ID, len(m.itemList.Items()))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderArchive() string {
	title := styles.title.Render("Archiving Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.CheckFreshness:
		phase = "Checking for changes..."
	case tasks.FetchMetadata:
		phase = "Fetching playlist metadata..."
	case tasks.FetchItems:
		phase = fmt.Sprintf("Fetching items (%d so far)", m.progress.Step)
	case tasks.Reconcile:
		phase = "Reconciling new items..."
	case tasks.Commit:
		phase = "Saving..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Archive failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Archive Complete!")
	info := fmt.Sprintf("\nPlaylist: %s (%s)\nMode: %s\nItems added: %d", m.result.Title, m.result.PlaylistID, m.result.Mode, m.result.ItemsAdded)

	var warning string
	if m.result.Warning != nil {
		warning = "\n\n" + styles.warn.Render(fmt.Sprintf("Could not check for changes: %v", m.result.Warning))
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warning, helpView)
}
