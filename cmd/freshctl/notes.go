package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/web/validate"
)

// NoteWriter is the note side of the food service.
type NoteWriter interface {
	AddNote(ctx context.Context, id, creatorEmail string, note model.Note) error
	DeleteNote(ctx context.Context, id string, note model.Note) error
}

func runNoteAdd(ctx context.Context, c NoteWriter, id, owner string, note model.Note, out io.Writer) error {
	if err := validate.NoteText(note.Text); err != nil {
		return err
	}
	if err := validate.Email(note.AuthorEmail); err != nil {
		return err
	}
	if owner == "" {
		owner = note.AuthorEmail
	}
	if err := c.AddNote(ctx, id, owner, note); err != nil {
		return err
	}
	return printJSON(out, note)
}

func runNoteDelete(ctx context.Context, c NoteWriter, id string, note model.Note, out io.Writer) error {
	if note.Text == "" || note.AuthorEmail == "" || note.Date == "" {
		return fmt.Errorf("--text, --email and --date identify the note and are required")
	}
	if err := c.DeleteNote(ctx, id, note); err != nil {
		return err
	}
	return printJSON(out, map[string]interface{}{"deleted": note})
}

func init() {
	notesCmd := &cobra.Command{Use: "notes", Short: "Note operations"}

	var text, author, email, owner, date string
	addCmd := &cobra.Command{
		Use:   "add FOOD_ID",
		Short: "Append a note to an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if author == "" {
				author = "Anonymous"
			}
			note := model.Note{
				Text:        text,
				Author:      author,
				AuthorEmail: email,
				Date:        time.Now().Format(model.NoteDateLayout),
			}
			return runNoteAdd(cmd.Context(), c, args[0], owner, note, cmd.OutOrStdout())
		},
	}
	addCmd.Flags().StringVarP(&text, "text", "t", "", "Note text (required)")
	addCmd.Flags().StringVarP(&author, "author", "n", "", "Author display name")
	addCmd.Flags().StringVarP(&email, "email", "e", "", "Author email (required)")
	addCmd.Flags().StringVar(&owner, "owner", "", "Item creator email (defaults to --email)")
	_ = addCmd.MarkFlagRequired("text")
	_ = addCmd.MarkFlagRequired("email")
	notesCmd.AddCommand(addCmd)

	var delText, delEmail string
	deleteCmd := &cobra.Command{
		Use:   "delete FOOD_ID",
		Short: "Delete the note matching text, author email and date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			note := model.Note{Text: delText, AuthorEmail: delEmail, Date: date}
			return runNoteDelete(cmd.Context(), c, args[0], note, cmd.OutOrStdout())
		},
	}
	deleteCmd.Flags().StringVarP(&delText, "text", "t", "", "Note text")
	deleteCmd.Flags().StringVarP(&delEmail, "email", "e", "", "Author email")
	deleteCmd.Flags().StringVarP(&date, "date", "d", "", "Note date exactly as stored")
	notesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(notesCmd)
}
