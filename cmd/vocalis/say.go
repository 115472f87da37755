// ABOUTME: The say subcommand: synthesize text and play it
// ABOUTME: Streamed by default, optional TUI, buffering and saving
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vocalis-audio/vocalis-go/internal/stream"
	"github.com/vocalis-audio/vocalis-go/internal/ui"
	"github.com/vocalis-audio/vocalis-go/pkg/client"
	"github.com/vocalis-audio/vocalis-go/pkg/vocalis"
)

var (
	sayVoice       string
	sayStability   float64
	saySimilarity  float64
	sayModel       string
	sayBuffered    bool
	saySavePath    string
	sayTUI         bool
	sayBlockFrames int
	sayChunkBytes  int
)

var sayCmd = &cobra.Command{
	Use:   "say [text...]",
	Short: "Speak text with a voice",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		applyStreamTunables()
		if saySavePath != "" {
			sayBuffered = true
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		c := newClient()
		voice, err := c.VoiceByName(ctx, sayVoice)
		if err != nil {
			return err
		}

		opts := client.GenerateOptions{ModelID: sayModel}
		if cmd.Flags().Changed("stability") || cmd.Flags().Changed("similarity") {
			opts.Settings = &client.Settings{
				Stability:       sayStability,
				SimilarityBoost: saySimilarity,
			}
		}

		if sayBuffered {
			return sayWholeFile(ctx, voice, text, opts)
		}
		if sayTUI {
			return sayWithTUI(ctx, voice, text, opts)
		}

		speaker := vocalis.NewSpeaker(voice, vocalis.Config{})
		return speaker.GenerateAndStream(ctx, text, opts)
	},
}

// sayWholeFile downloads everything first, plays it, and optionally
// saves the raw audio.
func sayWholeFile(ctx context.Context, voice *client.Voice, text string, opts client.GenerateOptions) error {
	speaker := vocalis.NewSpeaker(voice, vocalis.Config{})
	data, err := speaker.GenerateAndPlay(ctx, text, opts)
	if err != nil {
		return err
	}
	if saySavePath != "" {
		if err := vocalis.SaveAudio(data, saySavePath); err != nil {
			return err
		}
		fmt.Printf("saved %d bytes to %s\n", len(data), saySavePath)
	}
	return nil
}

// sayWithTUI streams playback while a bubbletea program shows session
// status.
func sayWithTUI(ctx context.Context, voice *client.Voice, text string, opts client.GenerateOptions) error {
	prog := ui.Run()

	name, err := voice.Name(ctx)
	if err != nil {
		name = voice.ID()
	}

	speaker := vocalis.NewSpeaker(voice, vocalis.Config{
		OnPlaybackStart: func() {
			prog.Send(ui.StatusMsg{State: "streaming"})
		},
		OnPlaybackEnd: func() {
			prog.Send(ui.StatusMsg{State: "finished"})
		},
	})

	done := speaker.GenerateAndStreamBackground(ctx, text, opts)
	go func() {
		prog.Send(ui.StatusMsg{VoiceName: name, Text: text, State: "downloading"})
		err := <-done
		if err != nil {
			prog.Send(ui.StatusMsg{Err: err.Error()})
			log.Error("session failed", "error", err)
		}
		prog.Send(ui.DoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func init() {
	sayCmd.Flags().StringVar(&sayVoice, "voice", "Rachel", "Voice name to speak with")
	sayCmd.Flags().Float64Var(&sayStability, "stability", 0.5, "Stability override (0..1)")
	sayCmd.Flags().Float64Var(&saySimilarity, "similarity", 0.75, "Similarity boost override (0..1)")
	sayCmd.Flags().StringVar(&sayModel, "model", client.DefaultModelID, "Synthesis model ID")
	sayCmd.Flags().BoolVar(&sayBuffered, "buffered", false, "Download fully before playing")
	sayCmd.Flags().StringVar(&saySavePath, "save", "", "Save the audio to this path (implies --buffered)")
	sayCmd.Flags().BoolVar(&sayTUI, "tui", false, "Show a status TUI during playback")

	sayCmd.Flags().IntVar(&sayBlockFrames, "block-frames", 0, "Decoded block size in frames")
	sayCmd.Flags().IntVar(&sayChunkBytes, "chunk-bytes", 0, "Download chunk size in bytes")

	rootCmd.AddCommand(sayCmd)
}

func applyStreamTunables() {
	if sayBlockFrames > 0 || sayChunkBytes > 0 {
		stream.SetStreamDefaults(sayBlockFrames, sayChunkBytes)
	}
}
