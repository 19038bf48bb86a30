package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/internal/storage"
	"github.com/jwebster45206/odyssey-engine/pkg/command"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	"github.com/muesli/reflow/wordwrap"
)

const (
	Title           = "ODYSSEY"
	PlaceHolderText = "Type a command, e.g. look around or notes"
)

// entry is one line of the transcript.
type entry struct {
	fromPlayer bool
	text       string
	isErr      bool
}

// ConsoleUI is the BubbleTea model that runs the game in-process.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	sess    *session.Session
	saves   storage.SaveStore
	changes <-chan session.Change

	transcript   []entry
	lastResponse string
	status       string

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	showQuitModal bool
}

type dispatchMsg struct {
	input  string
	result command.Result
}

type changedMsg struct {
	change session.Change
}

type savedMsg struct {
	id  uuid.UUID
	err error
}

type loadedMsg struct {
	id  uuid.UUID
	err error
}

type savesListedMsg struct {
	saves []storage.SaveInfo
	err   error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(sess *session.Session, saves storage.SaveStore, changes <-chan session.Change) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		sess:         sess,
		saves:        saves,
		changes:      changes,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
	// opening scene
	res := sess.Dispatch(context.Background(), "look around")
	m.transcript = append(m.transcript, entry{text: res.Text})
	m.lastResponse = res.Text
	return m
}

func writeMetadata(p player.State) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAYER") + "\n\n")
	content.WriteString(p.Name + "\n")
	content.WriteString(fmt.Sprintf("Tokens: %d  XP: %d\n\n", p.Tokens, p.Experience))

	content.WriteString("Location:\n")
	content.WriteString(p.Location.String() + "\n")
	content.WriteString("(" + p.Location.World + ")\n\n")

	content.WriteString("Inventory:\n")
	if len(p.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, it := range p.Inventory {
		content.WriteString(fmt.Sprintf("• %s x%d\n", it.Name, it.Quantity))
	}
	content.WriteString("\n")

	content.WriteString("Quests:\n")
	if len(p.Quests.Instances) == 0 {
		content.WriteString("None\n")
	}
	for _, q := range p.Quests.Instances {
		done, total := q.Progress()
		line := fmt.Sprintf("• %s (%d/%d)", q.Name, done, total)
		if q.Completed {
			line = doneStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Emails:\n")
	if len(p.Emails) == 0 {
		content.WriteString("None\n")
	}
	for _, e := range p.Emails {
		marker := "•"
		if !e.Read {
			marker = "✉"
		}
		content.WriteString(fmt.Sprintf("%s %s\n", marker, e.Name))
	}

	content.WriteString("\n")

	content.WriteString("Notes:\n")
	if len(p.Notes) == 0 {
		content.WriteString("None\n")
	}
	for _, n := range p.Notes {
		content.WriteString(fmt.Sprintf("• %s\n", n.Name))
	}
	content.WriteString("\n")

	content.WriteString("Fast Travel:\n")
	if len(p.FastTravel) == 0 {
		content.WriteString("None\n")
	}
	for _, ft := range p.FastTravel {
		content.WriteString(fmt.Sprintf("• %s (%s)\n", ft.Location.Name, ft.WorldName))
	}

	content.WriteString("\n")
	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+S: Save\n")
	content.WriteString("• Ctrl+Y: Copy reply\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /saves, /load <id>\n")

	return content.String()
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(Title) + "\n\n")
	content.WriteString("Type help to see what you can do.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		content.WriteString(formatEntry(e, chatWidth) + "\n\n")
	}
	if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatEntry(e entry, width int) string {
	switch {
	case e.fromPlayer:
		return userStyle.Render("> ") + wordwrap.String(e.text, width-2)
	case e.isErr:
		return errorStyle.Render(wordwrap.String(e.text, width))
	default:
		return gameStyle.Render(wordwrap.String(e.text, width))
	}
}

func (m *ConsoleUI) refreshMeta() {
	m.metaViewport.SetContent(writeMetadata(m.sess.Player()))
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForChange())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.refreshMeta()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.lastResponse); err != nil {
				m.status = "Copy failed: " + err.Error()
			} else {
				m.status = "Copied last reply."
			}
			m.writeChatContent()
			return m, nil
		case tea.KeyCtrlS:
			m.status = "Saving..."
			m.writeChatContent()
			return m, m.save()
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			m.status = ""
			return m, m.dispatch(input)
		}

	case dispatchMsg:
		m.transcript = append(m.transcript,
			entry{fromPlayer: true, text: msg.input},
			entry{text: msg.result.Text, isErr: !msg.result.Handled || msg.result.Err != nil})
		m.lastResponse = msg.result.Text
		m.writeChatContent()
		m.refreshMeta()
		return m, nil

	case changedMsg:
		m.refreshMeta()
		return m, m.waitForChange()

	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + msg.err.Error()
		} else {
			m.status = "Saved as " + msg.id.String()
		}
		m.writeChatContent()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "Load failed: " + msg.err.Error()
			m.writeChatContent()
			return m, nil
		}
		m.status = "Loaded " + msg.id.String()
		return m, m.dispatch("look around")

	case savesListedMsg:
		m.transcript = append(m.transcript, entry{text: savesText(msg.saves, msg.err), isErr: msg.err != nil})
		m.writeChatContent()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func savesText(saves []storage.SaveInfo, err error) string {
	if err != nil {
		return "Could not list saves: " + err.Error()
	}
	if len(saves) == 0 {
		return "No saved games."
	}
	var b strings.Builder
	b.WriteString("Saved games:")
	for _, s := range saves {
		b.WriteString(fmt.Sprintf("\n- %s  %s in %s (%s)", s.ID, s.PlayerName, s.World, s.SavedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// handleCommand runs console-only slash commands.
func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(input))
	switch fields[0] {
	case "/save":
		m.status = "Saving..."
		m.writeChatContent()
		return m, m.save()
	case "/saves":
		return m, m.listSaves()
	case "/load":
		if len(fields) < 2 {
			m.status = "Usage: /load <id>"
			m.writeChatContent()
			return m, nil
		}
		return m, m.load(fields[1])
	case "/quit":
		m.showQuitModal = true
		return m, nil
	default:
		m.status = "Unknown console command " + fields[0]
		m.writeChatContent()
		return m, nil
	}
}

func (m ConsoleUI) dispatch(input string) tea.Cmd {
	return func() tea.Msg {
		return dispatchMsg{input: input, result: m.sess.Dispatch(context.Background(), input)}
	}
}

func (m ConsoleUI) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-m.changes
		if !ok {
			return nil
		}
		return changedMsg{change: c}
	}
}

func (m ConsoleUI) save() tea.Cmd {
	return func() tea.Msg {
		id := m.sess.ID()
		err := m.saves.Save(context.Background(), id, m.sess.Snapshot())
		return savedMsg{id: id, err: err}
	}
}

func (m ConsoleUI) listSaves() tea.Cmd {
	return func() tea.Msg {
		saves, err := m.saves.List(context.Background())
		return savesListedMsg{saves: saves, err: err}
	}
}

func (m ConsoleUI) load(rawID string) tea.Cmd {
	return func() tea.Msg {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return loadedMsg{err: fmt.Errorf("bad save id %q", rawID)}
		}
		ctx := context.Background()
		snap, err := m.saves.Load(ctx, id)
		if err != nil {
			return loadedMsg{id: id, err: err}
		}
		return loadedMsg{id: id, err: m.sess.Restore(ctx, *snap)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Unsaved progress will be lost. Press Ctrl+S first to keep it.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
