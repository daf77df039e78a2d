package main

import (
	"context"
	"fmt"

	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send one message to the job search assistant",
	Long: `Chat posts a message to the assistant and prints its reply. Postings are parsed into
a pending job, which --folder files straight into that folder.`,
	RunE: runChat,
}

var (
	chatMessage string
	chatFolder  string
)

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message to send (required)")
	chatCmd.Flags().StringVar(&chatFolder, "folder", "", "Folder id to file a parsed posting into")
	_ = chatCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.assistant.Send(ctx, chatMessage, nil)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintChatReply(reply)
	if reply.ParsedJob == nil || chatFolder == "" {
		return nil
	}
	job, err := a.assistant.ConfirmAdd(chatFolder)
	if err != nil {
		return fmt.Errorf("failed to file job: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved job %s to folder %s\n", job.ID, job.FolderID)
	return nil
}
