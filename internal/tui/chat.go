package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/transcendencex/txchat/internal/attach"
	"github.com/transcendencex/txchat/internal/conversation"
	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/events"
	"github.com/transcendencex/txchat/internal/models"
	"github.com/transcendencex/txchat/internal/render"
	"github.com/transcendencex/txchat/internal/transcript"
)

const (
	brandName = "TranscendenceX"
	// untitled is shown in the header when no conversation is active
	untitled = "New Chat"

	sidebarWidth = 30
	// sidebarMinWidth is the narrowest terminal that still shows the sidebar
	sidebarMinWidth = 80

	headerHeight = 3 // Header panel with border
	inputHeight  = 6 // Input panel with border, chips line and textarea
	statusHeight = 2 // Message line and shortcuts
	loaderHeight = 1 // Loading indicator under the messages

	noticeDuration = 3 * time.Second
)

// Suggestions are offered while the message log is empty
var Suggestions = []string{
	"Help me design something",
	"Conversation starters placeholder",
	"What's the best way to handle form validation?",
}

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type (
	eventMsg        struct{ event events.Event }
	eventsClosedMsg struct{}
	replyMsg        struct {
		message models.Message
		err     error
	}
	noticeMsg      struct{ text string }
	clearNoticeMsg struct{ seq int }
	errMsg         struct{ err error }
	toggleThemeMsg struct{}
)

// ChatOptions configures a ChatModel
type ChatOptions struct {
	Renderer *render.Renderer
	Styles   Styles
	// Events is the manager's event stream. Without it the model refreshes
	// only after its own actions.
	Events <-chan events.Event
	// CopyReplies copies every received reply to the clipboard
	CopyReplies bool
	Now         func() time.Time
}

// ChatModel is the chat screen: conversation sidebar, message log and input
type ChatModel struct {
	manager     *conversation.Manager
	renderer    *render.Renderer
	styles      Styles
	events      <-chan events.Event
	copyReplies bool
	now         func() time.Time

	snapshot models.Snapshot
	staged   []models.Attachment

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	focus       focusArea
	cursor      int
	sidebarOpen bool

	notice    string
	noticeSeq int
	err       error

	width  int
	height int
	ready  bool
}

// NewChatModel creates the chat screen for manager
func NewChatModel(manager *conversation.Manager, opts ChatOptions) ChatModel {
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.DefaultOptions())
	}
	if opts.Styles.Palette.Name == "" {
		opts.Styles = NewStyles(render.DarkPalette)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points

	m := ChatModel{
		manager:     manager,
		renderer:    opts.Renderer,
		events:      opts.Events,
		copyReplies: opts.CopyReplies,
		now:         opts.Now,
		textarea:    ta,
		spinner:     s,
		sidebarOpen: true,
	}
	m.SetStyles(opts.Styles)
	m.refresh()
	return m
}

// Init starts the cursor blink and the event listener
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, listen(m.events))
}

// SetStyles applies new styles, e.g. after a theme toggle
func (m *ChatModel) SetStyles(s Styles) {
	m.styles = s
	m.textarea.FocusedStyle.CursorLine = lipgloss.NewStyle()
	m.textarea.FocusedStyle.Base = lipgloss.NewStyle().Foreground(s.Palette.Text)
	m.textarea.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(s.Palette.TextDim)
	m.textarea.BlurredStyle = m.textarea.FocusedStyle
	m.spinner.Style = s.Loading
	m.updateViewport()
}

// SetRenderer swaps the markdown renderer and re-renders the log
func (m *ChatModel) SetRenderer(r *render.Renderer) {
	m.renderer = r
	m.updateViewport()
}

// Snapshot returns the state last read from the manager
func (m ChatModel) Snapshot() models.Snapshot {
	return m.snapshot
}

// Staged returns the attachments waiting for the next send
func (m ChatModel) Staged() []models.Attachment {
	return m.staged
}

// Err returns the error shown in the status line
func (m ChatModel) Err() error {
	return m.err
}

// Notice returns the transient status message
func (m ChatModel) Notice() string {
	return m.notice
}

// listen waits for the next manager event
func listen(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// waitReply resolves when the reply to p arrives, fails or is discarded
func waitReply(p *conversation.PendingReply) tea.Cmd {
	return func() tea.Msg {
		msg, err := p.Wait(context.Background())
		return replyMsg{message: msg, err: err}
	}
}

// Update handles messages and updates the model
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case eventMsg:
		m.refresh()
		return m, listen(m.events)

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case replyMsg:
		m.refresh()
		switch {
		case errors.Is(msg.err, apierrors.ErrStaleCompletion):
		case msg.err != nil:
			m.err = msg.err
		case m.copyReplies && msg.message.HasText():
			cmds = append(cmds, copyText(msg.message.Text))
		}
		return m, tea.Batch(cmds...)

	case noticeMsg:
		return m, m.setNotice(msg.text)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.snapshot.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+n":
		return m.newConversation(), nil
	case "ctrl+b":
		m.sidebarOpen = !m.sidebarOpen
		if !m.showSidebar() {
			m.focusOn(focusInput)
		}
		if m.ready {
			m.resize(m.width, m.height)
		}
		return m, nil
	case "ctrl+y":
		return m, m.copyLastReply()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m ChatModel) handleInputKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		if m.showSidebar() && len(m.snapshot.Conversations) > 0 {
			m.cursor = m.activeIndex()
			m.focusOn(focusSidebar)
		}
		return m, nil
	case "enter":
		return m.submit()
	case "alt+enter":
		m.textarea.InsertString("\n")
		return m, nil
	case "alt+1", "alt+2", "alt+3":
		if len(m.snapshot.Messages) > 0 {
			return m, nil
		}
		n, _ := strconv.Atoi(strings.TrimPrefix(msg.String(), "alt+"))
		return m.send(Suggestions[n-1])
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m ChatModel) handleSidebarKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	convs := m.snapshot.Conversations

	switch msg.String() {
	case "esc", "tab":
		m.focusOn(focusInput)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(convs)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(convs) {
			m.err = m.manager.SelectConversation(convs[m.cursor].ID)
			m.refresh()
			m.focusOn(focusInput)
		}
	case "d", "x", "delete":
		if m.cursor < len(convs) {
			m.manager.DeleteConversation(convs[m.cursor].ID)
			m.err = nil
			m.refresh()
		}
	case "n":
		m = m.newConversation()
		m.focusOn(focusInput)
	}

	return m, nil
}

// submit sends the input, or runs it as a command when it starts with "/"
func (m ChatModel) submit() (ChatModel, tea.Cmd) {
	text := m.textarea.Value()
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "/") {
		m.textarea.Reset()
		return m.runCommand(trimmed)
	}
	if trimmed == "" && len(m.staged) == 0 {
		return m, nil
	}
	return m.send(text)
}

func (m ChatModel) send(text string) (ChatModel, tea.Cmd) {
	p, err := m.manager.Send(text, m.staged)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.staged = nil
	m.textarea.Reset()
	m.refresh()

	return m, tea.Batch(waitReply(p), m.spinner.Tick)
}

func (m ChatModel) runCommand(line string) (ChatModel, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	m.err = nil

	switch name {
	case "/attach":
		a, err := attach.FromPath(arg)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.staged = append(m.staged, a)
		return m, m.setNotice(fmt.Sprintf("Attached %s (%s)", a.Name, a.HumanSize()))

	case "/detach":
		if arg == "" {
			m.staged = nil
			return m, m.setNotice("Removed all attachments")
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(m.staged) {
			m.err = apierrors.NewNotFoundError("attachment", arg)
			return m, nil
		}
		removed := m.staged[n-1]
		m.staged = append(m.staged[:n-1:n-1], m.staged[n:]...)
		return m, m.setNotice("Removed " + removed.Name)

	case "/new":
		return m.newConversation(), nil

	case "/export":
		if arg == "" {
			m.err = apierrors.NewValidationError("path", "usage: /export FILE")
			return m, nil
		}
		return m, exportTranscript(m.snapshot, arg)

	case "/theme":
		return m, func() tea.Msg { return toggleThemeMsg{} }

	case "/help":
		return m, m.setNotice("/attach PATH  /detach [N]  /new  /export FILE  /theme  /quit")

	case "/quit", "/exit":
		return m, tea.Quit
	}

	m.err = apierrors.NewValidationError("command", "unknown command "+name)
	return m, nil
}

func (m ChatModel) newConversation() ChatModel {
	m.manager.CreateConversation()
	m.err = nil
	m.cursor = 0
	m.refresh()
	return m
}

func (m ChatModel) copyLastReply() tea.Cmd {
	msg, ok := m.snapshot.LastAssistantMessage()
	if !ok || !msg.HasText() {
		return func() tea.Msg { return noticeMsg{text: "Nothing to copy"} }
	}
	return copyText(msg.Text)
}

func copyText(text string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return errMsg{err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return noticeMsg{text: "Copied reply to clipboard"}
	}
}

func exportTranscript(s models.Snapshot, path string) tea.Cmd {
	return func() tea.Msg {
		opts := transcript.DefaultOptions()
		opts.Format = transcript.FormatForPath(path)

		f, err := os.Create(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to create %s: %w", path, err)}
		}
		if err := transcript.Write(f, s, opts); err != nil {
			_ = f.Close()
			return errMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return errMsg{err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return noticeMsg{text: "Exported transcript to " + path}
	}
}

func (m *ChatModel) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (m *ChatModel) focusOn(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// refresh reads the manager state and re-renders the log
func (m *ChatModel) refresh() {
	m.snapshot = m.manager.Snapshot()

	n := len(m.snapshot.Conversations)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if n == 0 && m.focus == focusSidebar {
		m.focusOn(focusInput)
	}
	m.updateViewport()
}

func (m ChatModel) activeIndex() int {
	if m.snapshot.ActiveConversationID == nil {
		return 0
	}
	for i, c := range m.snapshot.Conversations {
		if c.ID == *m.snapshot.ActiveConversationID {
			return i
		}
	}
	return 0
}

func (m ChatModel) showSidebar() bool {
	return m.sidebarOpen && m.width >= sidebarMinWidth
}

func (m ChatModel) innerWidth() int {
	return max(m.width-4, 20)
}

// mainWidth is the width of the messages panel
func (m ChatModel) mainWidth() int {
	w := m.innerWidth()
	if m.showSidebar() {
		w -= sidebarWidth + 2
	}
	return w
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - inputHeight - statusHeight - loaderHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := m.mainWidth() - 2

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.innerWidth() - 4)
	m.updateViewport()
}

// updateViewport renders the message log into the viewport
func (m *ChatModel) updateViewport() {
	if !m.ready {
		return
	}

	bubbleWidth := max(m.viewport.Width-6, 10)

	var sb strings.Builder
	for i, msg := range m.snapshot.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg, bubbleWidth))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderMessage(msg models.Message, width int) string {
	stamp := msg.CreatedAt.Format("15:04")

	if msg.Author == models.AuthorUser {
		var body []string
		if msg.HasText() {
			body = append(body, msg.Text)
		}
		if len(msg.Attachments) > 0 {
			body = append(body, m.renderChips(msg.Attachments, false))
		}
		label := m.styles.UserLabel.Render("You · " + stamp)
		bubble := m.styles.UserBubble.Width(width).Render(strings.Join(body, "\n"))
		return label + "\n" + bubble
	}

	content := strings.TrimSpace(m.renderer.MarkdownOrPlain(msg.Text, width-4))
	label := m.styles.AssistantLabel.Render("✦ " + brandName + " · " + stamp)
	bubble := m.styles.AssistantBubble.Width(width).Render(content)
	return label + "\n" + bubble
}

// renderChips renders attachments as "icon name (size)" chips, numbered when
// they are still staged.
func (m ChatModel) renderChips(atts []models.Attachment, numbered bool) string {
	chips := make([]string, 0, len(atts))
	for i, a := range atts {
		text := fmt.Sprintf("%s %s (%s)", transcript.Icon(a.Category), a.Name, a.HumanSize())
		if numbered {
			text = fmt.Sprintf("%d:%s", i+1, text)
		}
		chips = append(chips, m.styles.Chip.Render(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// View renders the chat screen
func (m ChatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	width := m.innerWidth()

	body := m.renderMain(m.mainWidth())
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(lipgloss.Height(body)-2), body)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderInput(width),
		m.renderStatusLine(width),
		m.renderStatusBar(width),
	)
}

func (m ChatModel) renderHeader(width int) string {
	menu := "☰ "
	if !m.sidebarOpen {
		menu = "☷ "
	}
	title := untitled
	if c, ok := m.snapshot.ActiveConversation(); ok && c.Title != "" {
		title = c.Title
	}

	left := lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.styles.Hint.Render(menu),
		m.styles.Brand.Render(brandName),
		m.styles.Hint.Render("  │  "),
		m.styles.Title.Render(title),
	)
	right := m.styles.Hint.Render("◐ " + m.styles.Palette.Name)

	gap := width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m ChatModel) renderSidebar(height int) string {
	inner := sidebarWidth - 2

	var lines []string
	lines = append(lines, m.styles.NewChatButton.Render("+ New Chat"), "")

	convs := m.snapshot.Conversations
	if len(convs) == 0 {
		lines = append(lines, m.styles.SidebarPreview.Render("No conversations yet"))
	}

	active := m.snapshot.ActiveConversationID
	for i, c := range convs {
		marker := "  "
		style := m.styles.SidebarItem
		if active != nil && c.ID == *active {
			style = m.styles.SidebarActive
			marker = "● "
		}
		if m.focus == focusSidebar && i == m.cursor {
			style = m.styles.SidebarCursor
			marker = "▸ "
		}

		lines = append(lines,
			style.Render(truncate(marker+c.Title, inner)),
			m.styles.SidebarPreview.Render("  "+truncate(c.Preview, inner-2)),
			m.styles.SidebarPreview.Render("  "+humanize.RelTime(c.CreatedAt, m.now(), "ago", "from now")),
			"",
		)
	}

	return m.styles.Sidebar.
		Width(sidebarWidth).
		Height(height).
		MaxHeight(height + 2).
		Render(strings.Join(lines, "\n"))
}

func (m ChatModel) renderMain(width int) string {
	var content string
	if len(m.snapshot.Messages) == 0 {
		content = m.renderEmptyState(m.viewport.Width, m.viewport.Height)
	} else {
		content = m.viewport.View()
	}

	loader := ""
	if m.snapshot.Pending {
		loader = m.renderLoading()
	}

	return m.styles.MessagesArea.
		Width(width).
		Render(content + "\n" + loader)
}

// renderEmptyState renders the greeting and the numbered suggestions
func (m ChatModel) renderEmptyState(width, height int) string {
	title := m.styles.WelcomeTitle.Width(width).Render("Hello user, How can I help you today?")
	sub := m.styles.WelcomeSub.Width(width).Render("Start a conversation or try a suggestion below")

	suggestions := make([]string, 0, len(Suggestions))
	for i, s := range Suggestions {
		key := m.styles.SuggestionKey.Render(fmt.Sprintf("alt+%d", i+1))
		suggestions = append(suggestions, m.styles.Suggestion.Render(key+"  "+s))
	}
	list := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, suggestions...))

	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", list)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m ChatModel) renderLoading() string {
	return m.styles.AssistantLabel.Render("✦ ") +
		m.spinner.View() +
		m.styles.Hint.Render(" thinking")
}

func (m ChatModel) renderInput(width int) string {
	label := m.styles.InputLabel.Render("Message")
	if len(m.staged) > 0 {
		label += "  " + m.renderChips(m.staged, true)
	}
	return m.styles.InputPanel.
		Width(width).
		Render(label + "\n" + m.textarea.View())
}

func (m ChatModel) renderStatusLine(width int) string {
	var line string
	switch {
	case m.err != nil:
		line = m.styles.Error.Render("✗ " + m.err.Error())
		if hint := errorHint(m.err); hint != "" {
			line += m.styles.Hint.Render("  " + hint)
		}
	case m.notice != "":
		line = m.styles.Notice.Render(m.notice)
	}
	return lipgloss.NewStyle().Width(width).MaxHeight(1).Render(line)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m ChatModel) renderStatusBar(width int) string {
	type shortcut struct {
		key  string
		desc string
	}

	shortcuts := []shortcut{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Tab", "Chats"},
		{"Ctrl+N", "New"},
		{"Ctrl+T", "Theme"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Quit"},
	}
	if m.focus == focusSidebar {
		shortcuts = []shortcut{
			{"↑↓", "Move"},
			{"Enter", "Open"},
			{"D", "Delete"},
			{"N", "New"},
			{"Tab", "Back"},
		}
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, m.styles.StatusKey.Render(s.key)+m.styles.StatusDesc.Render(" "+s.desc))
	}

	return m.styles.StatusBar.
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(items, "  │  "))
}

// truncate shortens s to n cells, ending in "…" when cut
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > n-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
