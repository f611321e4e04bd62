// Package commands provides CLI commands for sanai.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	modelFlag      string
	outputFlag     string
	fileFlag       string
	imageFlag      string
	saveImagesFlag string
	speakFlag      bool
	copyFlag       bool
	rawFlag        bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// newDependencies is replaced in tests
var newDependencies = NewDependencies

// stdinIsPipe reports whether input is being piped in; replaced in tests
var stdinIsPipe = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sanai [prompt]",
	Short: "San AI: Gemini chat with speech and image generation",
	Long: `sanai is a terminal client for San AI, a Gemini assistant that answers
questions, describes photos, reads replies aloud and draws pictures.

Messages containing /img, /foto, /gambar or "buatkan gambar" ask for an
image instead of a text reply.

Examples:
  sanai chat                            Start interactive chat
  sanai "Apa itu Go?"                   Send a single query
  sanai -i foto.jpg "Ini apa?"          Ask about a photo
  sanai "/img kucing lucu"              Generate an image
  sanai --speak "Ceritakan lelucon"     Read the reply aloud
  sanai -f prompt.md                    Read prompt from file
  cat prompt.md | sanai                 Read prompt from stdin
  sanai "Halo" -o reply.md              Save response to file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "sanai %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, ok, err := readPrompt(cmd, args)
		if err != nil {
			return err
		}
		if !ok {
			return cmd.Help()
		}

		return runQuery(cmd, prompt)
	},
}

// readPrompt picks the prompt from -f, the argument or stdin, in that order.
// An image alone is a valid query.
func readPrompt(cmd *cobra.Command, args []string) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if stdinIsPipe() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", imageFlag != "", nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Chat model to use (e.g., gemini-3-flash-preview)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Path to image file to include")
	rootCmd.Flags().StringVar(&saveImagesFlag, "save-images", "", "Download a generated image to this directory")
	rootCmd.Flags().BoolVar(&speakFlag, "speak", false, "Read the reply aloud")
	rootCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the reply to the clipboard")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the reply text")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
