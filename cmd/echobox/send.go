package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"echobox/internal/composer"
	"echobox/internal/domain"
	"echobox/internal/notify"
	"echobox/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an anonymous message",
	}
	cmd.AddCommand(sendTextCmd())
	cmd.AddCommand(sendImageCmd())
	cmd.AddCommand(sendVoiceCmd())
	cmd.AddCommand(sendDocumentCmd())
	return cmd
}

func sendTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <message>",
		Short: "Send a plain text message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitDraft(cmd, composer.NewTextDraft(args[0]))
		},
	}
}

func sendImageCmd() *cobra.Command {
	var caption string
	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Send an image, optionally with a caption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readFileInput(args[0])
			if err != nil {
				return err
			}
			return submitDraft(cmd, composer.NewImageDraft(file, caption))
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "caption (max 200 characters)")
	return cmd
}

func sendVoiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voice <path>",
		Short: "Send a recorded audio clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := readFileInput(args[0])
			if err != nil {
				return err
			}
			return submitDraft(cmd, composer.NewVoiceDraft(audio))
		},
	}
}

func sendDocumentCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "document <path>",
		Short: "Send a document, optionally with a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readFileInput(args[0])
			if err != nil {
				return err
			}
			return submitDraft(cmd, composer.NewDocumentDraft(file, description))
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "description (max 200 characters)")
	return cmd
}

func readFileInput(path string) (composer.FileInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return composer.FileInput{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return composer.FileInput{Name: filepath.Base(path), Data: data}, nil
}

// submitDraft runs the outbound pipeline for one draft and records the
// submission in the local sent log.
func submitDraft(cmd *cobra.Command, draft composer.Draft) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	comp := composer.New(newInboxClient(cfg), logger)
	comp.SetDraft(draft)

	if err := comp.Submit(cmd.Context()); err != nil {
		if errors.Is(err, composer.ErrNothingToSend) {
			return fmt.Errorf("nothing to send: provide content before submitting")
		}
		return err
	}

	summary := notify.Preview(domain.Message{Kind: domain.KindText, Content: draft.Summary()})
	entry := store.SentEntry{
		ID:      uuid.NewString(),
		Kind:    draft.Kind().String(),
		Summary: summary,
	}
	if err := st.RecordSent(cmd.Context(), entry); err != nil {
		logger.Warn("cannot record submission in sent log", "err", err)
	}

	fmt.Println("Message sent anonymously.")
	return nil
}
