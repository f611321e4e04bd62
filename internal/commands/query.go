package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/sanai/internal/chat"
	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/models"
	"github.com/diogo/sanai/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#2563eb"),
	lipgloss.Color("#3b82f6"),
	lipgloss.Color("#60a5fa"),
	lipgloss.Color("#93c5fd"),
	lipgloss.Color("#a855f7"),
	lipgloss.Color("#c084fc"),
	lipgloss.Color("#22d3ee"),
	lipgloss.Color("#67e8f9"),
}

var (
	colorText    = lipgloss.Color("#f1f5f9")
	colorTextDim = lipgloss.Color("#71717a")
	colorBorder  = lipgloss.Color("#27272a")
	colorSuccess = lipgloss.Color("#22c55e")
	colorError   = lipgloss.Color("#ef4444")
	colorPrimary = lipgloss.Color("#93c5fd")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	imageLinkStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Underline(true)
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextDim).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// queryOptions carries the one-shot flags
type queryOptions struct {
	Prompt     string
	Image      string
	Output     string
	SaveImages string
	Speak      bool
	Copy       bool
	Raw        bool
}

// runQuery builds the dependencies and answers a single prompt
func runQuery(cmd *cobra.Command, prompt string) error {
	deps, err := newDependencies(modelFlag)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return query(ctx, deps, queryOptions{
		Prompt:     prompt,
		Image:      imageFlag,
		Output:     outputFlag,
		SaveImages: saveImagesFlag,
		Speak:      speakFlag,
		Copy:       copyFlag,
		Raw:        rawFlag,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// query sends one message through the dispatcher and prints the reply.
// Nothing is written to the stored conversation.
func query(ctx context.Context, deps *Dependencies, opts queryOptions, out, errOut io.Writer) error {
	prompt := strings.TrimSpace(opts.Prompt)

	var att *chat.Attachment
	if opts.Image != "" {
		a, err := chat.LoadAttachment(opts.Image)
		if err != nil {
			return fmt.Errorf("failed to load image: %w", err)
		}
		att = a
	}

	if prompt == "" && att == nil {
		return fmt.Errorf("prompt cannot be empty")
	}

	verbose := deps.Config.Verbose && !opts.Raw
	intent := chat.Classify(prompt, att != nil)
	if verbose {
		fmt.Fprintf(errOut, "[verbose] Model: %s\n", deps.Config.Model)
		fmt.Fprintf(errOut, "[verbose] Intent: %s\n", intent)
	}

	var spin *spinner
	if !opts.Raw {
		message := "Generating response"
		if intent == chat.IntentImage {
			message = "Membuat Gambar"
		}
		spin = newSpinner(errOut, message)
		spin.start()
	}

	conv := chat.NewConversation(nil, nil)
	startTime := time.Now()
	reply, err := deps.NewDispatcher().Send(ctx, conv, prompt, att)
	requestDuration := time.Since(startTime)

	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("generation failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if verbose {
		fmt.Fprintf(errOut, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	if opts.SaveImages != "" && reply.HasImage() {
		path, err := deps.Client.DownloadImage(ctx, reply.ImageURL, opts.SaveImages)
		if err != nil {
			fmt.Fprintln(errOut, formatErrorMessage(err, "Failed to save image"))
		} else if !opts.Raw {
			fmt.Fprintln(errOut, successMessage("Image saved to "+path))
		}
	}

	if opts.Copy {
		if err := copyToClipboard(reply.Text); err != nil {
			fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else if !opts.Raw {
			fmt.Fprintln(errOut, successMessage("Copied to clipboard"))
		}
	}

	if err := printReply(reply, opts, out, errOut); err != nil {
		return err
	}

	if opts.Speak {
		speak(ctx, deps, reply.Text, errOut)
	}
	return nil
}

// printReply writes the reply to the output file or the terminal
func printReply(reply models.Message, opts queryOptions, out, errOut io.Writer) error {
	text := reply.Text
	if reply.HasRemoteImage() {
		text += "\n\n" + reply.ImageURL
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.Raw {
			fmt.Fprintln(errOut, successMessage("Response saved to "+opts.Output))
		}
		return nil
	}

	if opts.Raw {
		fmt.Fprintln(out, text)
		return nil
	}

	termWidth := getTerminalWidth()
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(out, assistantLabelStyle.Render("✦ "+models.AssistantName))

	renderOpts := render.LoadOptionsFromConfigWithWidth(contentWidth)
	rendered := render.Reply(reply.Text, renderOpts)
	fmt.Fprintln(out, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	if reply.HasRemoteImage() {
		fmt.Fprintln(out, imageLinkStyle.Render("🖼 "+reply.ImageURL))
	}
	return nil
}

// speak reads text aloud and waits for playback; Ctrl+C stops it
func speak(ctx context.Context, deps *Dependencies, text string, errOut io.Writer) {
	speaker, err := deps.NewSpeaker(true)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, "Speech unavailable"))
		return
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			speaker.Stop()
		case <-done:
		}
	}()

	speaker.SpeakAndWait(text)
}

func successMessage(message string) string {
	return lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ " + message)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Set your key with 'sanai config set api_key <key>' or export GEMINI_API_KEY"))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: You've hit the usage limit. Try again later or use a different model"))
	case apierrors.IsBlockedError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The prompt was blocked. Rephrase it and try again"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or check your connection"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and try again"))
	}

	return sb.String()
}
