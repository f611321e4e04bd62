package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/diogo/sanai/internal/audio"
	"github.com/diogo/sanai/internal/browser"
	"github.com/diogo/sanai/internal/chat"
	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/logging"
	"github.com/diogo/sanai/internal/models"
	"github.com/diogo/sanai/internal/render"
)

// copyResetDelay is how long "TERSALIN" stays on screen
const copyResetDelay = 2 * time.Second

// Replaced in tests
var (
	copyToClipboard = clipboard.WriteAll
	openBrowser     = browser.Open
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	replyMsg struct {
		reply models.Message
		err   error
	}
	// speakingMsg carries Speaker state changes into the update loop
	speakingMsg bool
	copyResetMsg struct {
		id int
	}
	noticeMsg struct {
		text string
		err  error
	}
)

// ImageDownloader saves a generated or attached image to disk
type ImageDownloader interface {
	DownloadImage(ctx context.Context, imageURL, dir string) (string, error)
}

// Options wires the chat screen to the rest of the application
type Options struct {
	Conversation *chat.Conversation
	Dispatcher   *chat.Dispatcher
	Speaker      *audio.Speaker  // nil disables speech
	Images       ImageDownloader // nil disables /save and /open of inline images
	DownloadDir  string
	ModelName    string
	Render       render.Options
	Palette      render.Palette
	Log          logrus.FieldLogger
}

// Model represents the TUI state
type Model struct {
	conv        *chat.Conversation
	dispatcher  *chat.Dispatcher
	speaker     *audio.Speaker
	images      ImageDownloader
	downloadDir string
	modelName   string
	renderOpts  render.Options
	log         logrus.FieldLogger

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	attachment     *chat.Attachment
	loading        bool
	pendingIntent  chat.Intent
	cancelRequest  context.CancelFunc
	speaking       bool
	ticking        bool
	notice         string
	copyID         int
	copied         bool
	ready          bool
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat screen
func NewChatModel(opts Options) Model {
	if opts.Palette.Name == "" {
		opts.Palette = render.DefaultPalette
	}
	ApplyPalette(opts.Palette)

	ta := textarea.New()
	ta.Placeholder = "Tulis pesan..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()
	// Enter sends; alt+enter breaks the line.
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	conv := opts.Conversation
	if conv == nil {
		conv = chat.NewConversation(nil, nil)
	}

	renderOpts := opts.Render
	if renderOpts.Width == 0 {
		renderOpts = render.DefaultOptions()
	}

	return Model{
		conv:        conv,
		dispatcher:  opts.Dispatcher,
		speaker:     opts.Speaker,
		images:      opts.Images,
		downloadDir: opts.DownloadDir,
		modelName:   opts.ModelName,
		renderOpts:  renderOpts,
		log:         log,
		textarea:    ta,
		spinner:     s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "esc":
			if m.loading {
				// The request ends with the failure reply; replyMsg clears loading.
				if m.cancelRequest != nil {
					m.cancelRequest()
				}
				return m, nil
			}
			m.shutdown()
			return m, tea.Quit

		case "ctrl+t":
			m.toggleSpeech()
			return m, nil

		case "enter":
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case replyMsg:
		m.loading = false
		if m.cancelRequest != nil {
			m.cancelRequest()
			m.cancelRequest = nil
		}
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.err = msg.err
			}
		} else if m.speaker != nil {
			m.speaker.Speak(msg.reply.Text)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case speakingMsg:
		// Notifications may arrive out of order; the speaker holds the truth.
		m.speaking = bool(msg)
		if m.speaker != nil {
			m.speaking = m.speaker.Speaking()
		}
		if m.speaking {
			cmds = append(cmds, m.startTicking())
		}

	case copyResetMsg:
		if msg.id == m.copyID {
			m.copied = false
		}

	case noticeMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = msg.text
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading || m.speaking {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		} else {
			m.ticking = false
		}
	}

	// Only KeyMsg reaches the textarea so terminal replies don't leak into the input
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: either a local command or a message for the dispatcher
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" && m.attachment == nil {
		return m, nil
	}

	if handled, next, cmd := m.runCommand(input); handled {
		next.textarea.Reset()
		return next, cmd
	}

	if m.dispatcher == nil {
		m.err = fmt.Errorf("chat is not configured")
		return m, nil
	}

	req, err := m.dispatcher.Submit(m.conv, input, m.attachment)
	if err != nil {
		m.err = err
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRequest = cancel
	m.loading = true
	m.pendingIntent = req.Intent()
	m.attachment = nil
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.textarea.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		runRequest(ctx, req),
		m.spinner.Tick,
		m.startTicking(),
	)
}

// startTicking starts the animation loop unless it is already running
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return animationTick()
}

// runRequest performs the remote call off the update loop
func runRequest(ctx context.Context, req *chat.Request) tea.Cmd {
	return func() tea.Msg {
		reply, err := req.Run(ctx)
		return replyMsg{reply: reply, err: err}
	}
}

// runCommand executes a local slash command. Image triggers such as /img
// are not commands and go to the dispatcher.
func (m Model) runCommand(input string) (bool, Model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, m, nil
	}
	name := strings.ToLower(fields[0])
	arg := strings.TrimSpace(input[len(fields[0]):])

	switch name {
	case "/exit", "/quit", "exit", "quit":
		m.shutdown()
		return true, m, tea.Quit

	case "/attach":
		if arg == "" {
			m.err = fmt.Errorf("usage: /attach <path>")
			return true, m, nil
		}
		att, err := chat.LoadAttachment(expandHome(arg))
		if err != nil {
			m.err = err
			return true, m, nil
		}
		m.attachment = att
		m.err = nil
		m.notice = ""
		return true, m, nil

	case "/detach":
		m.attachment = nil
		return true, m, nil

	case "/copy":
		next, cmd := m.copyCode(arg)
		return true, next, cmd

	case "/save":
		next, cmd := m.saveImage()
		return true, next, cmd

	case "/open":
		next, cmd := m.openImage()
		return true, next, cmd

	case "/tts":
		m.toggleSpeech()
		return true, m, nil
	}

	return false, m, nil
}

// copyCode puts the n-th code block (1-based) of the last reply on the clipboard
func (m Model) copyCode(arg string) (Model, tea.Cmd) {
	n := 1
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			m.err = fmt.Errorf("usage: /copy [n]")
			return m, nil
		}
		n = v
	}

	reply, ok := m.conv.LastModelMessage()
	if !ok {
		m.err = fmt.Errorf("no reply to copy from")
		return m, nil
	}

	blocks := render.CodeBlocks(reply.Text)
	if n > len(blocks) {
		m.err = fmt.Errorf("the last reply has %d code block(s)", len(blocks))
		return m, nil
	}

	if err := copyToClipboard(blocks[n-1].Text); err != nil {
		m.err = fmt.Errorf("failed to copy to clipboard: %w", err)
		return m, nil
	}

	m.err = nil
	m.copied = true
	m.copyID++
	id := m.copyID
	return m, tea.Tick(copyResetDelay, func(time.Time) tea.Msg {
		return copyResetMsg{id: id}
	})
}

// saveImage downloads the most recent image of the conversation
func (m Model) saveImage() (Model, tea.Cmd) {
	img, ok := m.conv.LastImage()
	if !ok {
		m.err = fmt.Errorf("no image in this conversation")
		return m, nil
	}
	if m.images == nil {
		m.err = fmt.Errorf("image download is not configured")
		return m, nil
	}

	images, dir, url := m.images, m.downloadDir, img.ImageURL
	m.notice = "Menyimpan gambar..."
	return m, func() tea.Msg {
		path, err := images.DownloadImage(context.Background(), url, dir)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Disimpan: " + path}
	}
}

// openImage shows the most recent image in the system viewer.
// Inline images are written to the download dir first.
func (m Model) openImage() (Model, tea.Cmd) {
	img, ok := m.conv.LastImage()
	if !ok {
		m.err = fmt.Errorf("no image in this conversation")
		return m, nil
	}

	images, dir := m.images, m.downloadDir
	return m, func() tea.Msg {
		ctx := context.Background()
		target := img.ImageURL
		if img.HasInlineImage() {
			if images == nil {
				return noticeMsg{err: fmt.Errorf("image download is not configured")}
			}
			path, err := images.DownloadImage(ctx, target, dir)
			if err != nil {
				return noticeMsg{err: err}
			}
			target = path
		}
		if err := openBrowser(ctx, target); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Dibuka: " + target}
	}
}

func (m *Model) toggleSpeech() {
	if m.speaker == nil {
		m.err = fmt.Errorf("speech is not available")
		return
	}
	if !m.speaker.Toggle() {
		m.speaking = false
	}
}

func (m *Model) shutdown() {
	if m.cancelRequest != nil {
		m.cancelRequest()
	}
	if m.speaker != nil {
		m.speaker.Stop()
	}
}

func (m Model) ttsEnabled() bool {
	return m.speaker != nil && m.speaker.Enabled()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ " + models.AssistantName),
	}
	if m.modelName != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.modelName),
		)
	}
	headerParts = append(headerParts, hintStyle.Render("  •  "))
	if m.ttsEnabled() {
		headerParts = append(headerParts, ttsOnStyle.Render("🔊 Suara aktif"))
	} else {
		headerParts = append(headerParts, ttsOffStyle.Render("🔇 Suara mati"))
	}
	if m.speaking {
		headerParts = append(headerParts,
			hintStyle.Render("  "),
			speakingStyle.Render(m.voiceWave()),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if m.conv.Len() == 0 && !m.loading {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		label := inputLabelStyle.Render("Kamu")
		if m.attachment != nil {
			label = lipgloss.JoinHorizontal(lipgloss.Center,
				label,
				chipStyle.Render("📷 Foto Siap"),
				hintStyle.Render(" "+m.attachment.Name+"  /detach untuk batal"),
			)
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// Status
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, m.formatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// voiceWave animates the speaking indicator
func (m Model) voiceWave() string {
	bars := []string{"▂▅▃", "▃▂▅", "▅▃▂"}
	return bars[m.animationFrame%len(bars)] + " Berbicara"
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("S")
	title := welcomeTitleStyle.Width(width).Render(models.AssistantName + " Siap Membantu")
	subtitle := welcomeStyle.Width(width).Render("Tanyakan apa saja atau kirim foto untuk dianalisis.")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// pendingLabel describes what the pending request is doing
func (m Model) pendingLabel() string {
	if m.pendingIntent == chat.IntentImage {
		return "Membuat Gambar..."
	}
	return models.AssistantName + " sedang mengetik"
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextDim).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + m.pendingLabel() + " ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.copied {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(copiedStyle.Render("✓ TERSALIN"))
	}
	if m.notice != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(noticeStyle.Render(m.notice))
	}

	escDesc := "Keluar"
	if m.loading {
		escDesc = "Batal"
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Kirim"},
		{"Alt+Enter", "Baris baru"},
		{"Ctrl+T", "Suara"},
		{"Esc", escDesc},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.conv.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		stamp := timestampStyle.Render(" " + msg.Time().Format("15:04"))

		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render("● Kamu") + stamp + "\n")
			if msg.HasImage() {
				content.WriteString(lipgloss.NewStyle().MarginLeft(4).Render(imageRef(msg.ImageURL)) + "\n")
			}
			if msg.Text != "" {
				content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
			}
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ "+models.AssistantName) + stamp + "\n")

			rendered := render.Reply(msg.Text, m.renderOpts.WithWidth(bubbleWidth-4))
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
			if msg.HasImage() {
				content.WriteString("\n" + imageRef(msg.ImageURL))
			}
		}
		content.WriteString("\n")
	}

	if m.loading && m.pendingIntent == chat.IntentImage {
		content.WriteString("\n" + loadingStyle.Render("MEMBUAT GAMBAR..."))
	}

	m.viewport.SetContent(content.String())
}

// imageRef renders an image reference; inline images are summarised
func imageRef(url string) string {
	if strings.HasPrefix(url, "data:") {
		return imageInlineStyle.Render("[gambar terlampir]")
	}
	return imageLinkStyle.Render("🖼 "+url) + hintStyle.Render("  /open /save")
}

// formatError formats an error with structured error details for display
func (m Model) formatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("⚠ Error: %v", err)))

	detailStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render(fmt.Sprintf("HTTP Status: %d", status)))
	}

	if hint := errorHint(err); hint != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(colorAccentSoft).PaddingLeft(2).Render("💡 " + hint))
	}

	return sb.String()
}

func viewportKeyMap() viewport.KeyMap {
	km := viewport.DefaultKeyMap()
	// Letter bindings would fire while typing in the composer.
	km.PageDown.SetKeys("pgdown")
	km.PageUp.SetKeys("pgup")
	km.HalfPageUp.SetKeys("ctrl+u")
	km.HalfPageDown.SetKeys("ctrl+d")
	km.Up.SetKeys("up")
	km.Down.SetKeys("down")
	return km
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(opts Options) error {
	p, release := newProgram(NewChatModel(opts), tea.WithAltScreen())
	defer release()

	_, err := p.Run()
	return err
}

// newProgram wires speaker state changes into the event loop. The returned
// func detaches the speaker and silences it.
func newProgram(m Model, opts ...tea.ProgramOption) (*tea.Program, func()) {
	p := tea.NewProgram(m, opts...)
	if m.speaker == nil {
		return p, func() {}
	}

	speaker := m.speaker
	speaker.OnStateChange(func(speaking bool) {
		// Speak and Stop are called from Update, and Send blocks until the
		// event loop reads the message.
		go p.Send(speakingMsg(speaking))
	})
	return p, func() {
		speaker.OnStateChange(nil)
		speaker.Stop()
	}
}
