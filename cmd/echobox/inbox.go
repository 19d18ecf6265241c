package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"echobox/internal/domain"
	"echobox/internal/notify"
	"echobox/internal/review"
	"echobox/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func inboxCmd() *cobra.Command {
	var unreadOnly bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List received messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, st, err := openReviewInbox(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			messages := in.Messages()
			if unreadOnly {
				messages = in.Unread()
			}
			if len(messages) == 0 {
				fmt.Println("Inbox is empty.")
				return nil
			}

			for _, m := range messages {
				marker := " "
				if !m.IsRead {
					marker = "*"
				}
				age := "-"
				if !m.CreatedAt.IsZero() {
					age = humanize.Time(m.CreatedAt)
				}
				detail := notify.Preview(m)
				if m.File != nil {
					detail = fmt.Sprintf("%s (%s)", detail, humanize.Bytes(uint64(m.File.Size)))
				}
				fmt.Printf("%s %-10s %-9s %-16s %s\n", marker, m.ID, m.Kind, age, detail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "show only unread messages")
	return cmd
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, st, err := openReviewInbox(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := in.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Message marked as read.")
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a message from the local working set",
		Long:  "Removes the message from this session's list. The service keeps no delete endpoint; the message reappears on the next fetch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, st, err := openReviewInbox(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if !in.Delete(args[0]) {
				return fmt.Errorf("message not found: %s", args[0])
			}
			fmt.Printf("Message deleted. %d message(s) remaining.\n", len(in.Messages()))
			return nil
		},
	}
}

func saveCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Download a message's file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := requireAdmin(st); err != nil {
				return err
			}

			client := newInboxClient(cfg)
			in := review.New(client, logger)
			if err := in.Refresh(cmd.Context()); err != nil {
				return err
			}

			msg, ok := in.Get(args[0])
			if !ok {
				return fmt.Errorf("message not found: %s", args[0])
			}
			if msg.Kind == domain.KindText || msg.File == nil {
				return fmt.Errorf("message %s is a text message, nothing to save", msg.ID)
			}
			if msg.File.Locator == "" {
				return fmt.Errorf("message %s has no retrievable file", msg.ID)
			}

			body, _, err := client.FetchMedia(cmd.Context(), msg.File.Locator)
			if err != nil {
				return err
			}
			defer body.Close()

			dest := filepath.Join(outDir, msg.File.Name)
			f, err := os.Create(dest)
			if err != nil {
				return err
			}
			written, err := io.Copy(f, body)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(dest)
				return fmt.Errorf("save %s: %w", dest, err)
			}

			fmt.Printf("Saved %s (%s)\n", dest, humanize.Bytes(uint64(written)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// openReviewInbox loads config, checks the admin session, and returns a
// freshly fetched review inbox. The caller closes the store.
func openReviewInbox(cmd *cobra.Command) (*review.Inbox, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := requireAdmin(st); err != nil {
		st.Close()
		return nil, nil, err
	}

	in := review.New(newInboxClient(cfg), logger)
	if err := in.Refresh(cmd.Context()); err != nil {
		st.Close()
		return nil, nil, err
	}
	return in, st, nil
}
