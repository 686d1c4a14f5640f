package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/clario/internal/api"
	"github.com/clario/internal/chat"
)

// ChatCommand returns the interactive chat command.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with clario",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "conversation",
				Aliases: []string{"C"},
				Usage:   "Continue an existing conversation by id",
			},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	if id := c.String("conversation"); id != "" {
		messages, err := app.Chat.GetConversation(c.Context, id)
		if err != nil {
			return fmt.Errorf("%s", api.UserMessage(err))
		}
		for _, m := range messages {
			printMessage(m)
		}
	} else {
		app.Chat.NewChat()
		for _, m := range app.Chat.Transcript() {
			printMessage(m)
		}
	}

	fmt.Println("(type your message, or /quit to leave)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			break
		}

		reply, err := app.Chat.SendMessage(c.Context, line)
		if err != nil {
			// The transcript already holds the failure placeholder; a dead
			// session is the only unrecoverable case.
			if errors.Is(err, api.ErrUnauthorized) {
				return fmt.Errorf("session expired. Run 'clario login' again")
			}
			last := app.Chat.Transcript()
			printMessage(last[len(last)-1])
			continue
		}
		if reply == nil {
			continue // blank input, nothing sent
		}
		printMessage(*reply)
	}

	return scanner.Err()
}

// ConversationsCommand returns history management subcommands.
func ConversationsCommand() *cli.Command {
	return &cli.Command{
		Name:    "conversations",
		Aliases: []string{"conv"},
		Usage:   "Manage conversation history",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List conversations, most recently updated first",
				Action: runConversationsList,
			},
			{
				Name:      "show",
				Usage:     "Print one conversation's messages",
				ArgsUsage: "CONVERSATION_ID",
				Action:    runConversationsShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a conversation",
				ArgsUsage: "CONVERSATION_ID",
				Action:    runConversationsDelete,
			},
			{
				Name:      "rename",
				Usage:     "Rename a conversation",
				ArgsUsage: "CONVERSATION_ID TITLE",
				Action:    runConversationsRename,
			},
		},
	}
}

func runConversationsList(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	conversations, err := app.Chat.ListConversations(c.Context)
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	for _, conv := range conversations {
		fmt.Printf("%s  %-40s  %s\n", conv.ID, conv.Title, conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runConversationsShow(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: conversation id")
	}

	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	messages, err := app.Chat.GetConversation(c.Context, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	for _, m := range messages {
		printMessage(m)
	}
	return nil
}

func runConversationsDelete(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: conversation id")
	}

	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	id := c.Args().Get(0)
	if err := app.Chat.DeleteConversation(c.Context, id); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}
	fmt.Printf("Deleted conversation %s.\n", id)
	return nil
}

func runConversationsRename(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("missing required arguments: conversation id and title")
	}

	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	id := c.Args().Get(0)
	title := c.Args().Get(1)
	if err := app.Chat.RenameConversation(c.Context, id, title); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}
	fmt.Printf("Renamed conversation %s.\n", id)
	return nil
}

func printMessage(m chat.Message) {
	switch m.Role {
	case chat.RoleUser:
		fmt.Printf("you> %s\n", m.Content)
	default:
		fmt.Printf("clario> %s\n", m.Content)
	}
}
