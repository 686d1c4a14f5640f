package chat

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clario/internal/api"
	"github.com/clario/internal/auth"
)

// Greeting seeds a fresh chat the way the dashboard modal opens one.
const Greeting = "Hey there! I'm clario, your AI companion. How are you feeling today?"

// sendFailureReply is the synthetic assistant message appended when a send
// fails. The user's own message is never retracted.
const sendFailureReply = "I'm sorry, I'm having trouble responding right now. Please try again."

// Client drives the conversation lifecycle against the backend and keeps the
// local transcript of the open chat. A conversation identifier is only ever
// adopted from the server: a new thread has no id until its first exchange
// completes.
type Client struct {
	api     *api.Client
	session *auth.Session

	// activeID is the conversation the next send appends to; empty means
	// new-chat mode.
	activeID   string
	transcript []Message

	// conversations caches the last successful ListConversations result.
	conversations []Conversation
}

// NewClient creates a conversation client in new-chat mode.
func NewClient(apiClient *api.Client, session *auth.Session) *Client {
	return &Client{api: apiClient, session: session}
}

// ActiveConversationID returns the active pointer, empty in new-chat mode.
func (c *Client) ActiveConversationID() string {
	return c.activeID
}

// Transcript returns the local message sequence in append order.
func (c *Client) Transcript() []Message {
	return c.transcript
}

// NewChat resets to new-chat mode and seeds the greeting.
func (c *Client) NewChat() {
	c.activeID = ""
	c.transcript = []Message{{
		ID:      uuid.New().String(),
		Role:    RoleAssistant,
		Content: Greeting,
	}}
}

// ListConversations returns the user's threads in backend order. It fails
// with ErrUnauthorized before any network call when the session is not
// authenticated.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	if !c.session.Authenticated() {
		return nil, api.ErrUnauthorized
	}

	var conversations []Conversation
	if err := c.api.Get(ctx, "/chat/conversations", &conversations); err != nil {
		return nil, err
	}

	c.conversations = conversations
	return conversations, nil
}

// Conversations returns the cached history list from the last successful
// ListConversations.
func (c *Client) Conversations() []Conversation {
	return c.conversations
}

// conversationHistory is the backend shape for one thread's messages.
type conversationHistory struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

// GetConversation fetches the full message sequence for one thread, sets it
// as the active conversation, and replaces the transcript.
func (c *Client) GetConversation(ctx context.Context, id string) ([]Message, error) {
	if !c.session.Authenticated() {
		return nil, api.ErrUnauthorized
	}

	var history conversationHistory
	if err := c.api.Get(ctx, "/chat/conversations/"+id, &history); err != nil {
		return nil, err
	}

	c.activeID = id
	c.transcript = history.Messages
	return history.Messages, nil
}

// sendRequest and sendResponse mirror POST /chat/send.
type sendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type sendResponse struct {
	Message        string `json:"message"`
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

// SendMessage appends the user's message to the transcript, sends it, and
// appends the assistant's reply. Blank input is a no-op with no network
// call. On a new conversation's first successful send, the server-assigned
// id becomes the active pointer and the history list is refreshed. On
// failure a single synthetic assistant message is appended instead of the
// reply; the optimistic user message stays.
func (c *Client) SendMessage(ctx context.Context, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if !c.session.Authenticated() {
		return nil, api.ErrUnauthorized
	}

	// Optimistic append: the user sees their message before the reply lands.
	c.transcript = append(c.transcript, Message{
		ID:      uuid.New().String(),
		Role:    RoleUser,
		Content: text,
	})

	req := sendRequest{Message: text, ConversationID: c.activeID}
	var resp sendResponse
	if err := c.api.Post(ctx, "/chat/send", req, &resp); err != nil {
		log.Debug().Err(err).Msg("chat send failed")
		c.transcript = append(c.transcript, Message{
			ID:      uuid.New().String(),
			Role:    RoleAssistant,
			Content: sendFailureReply,
		})
		return nil, err
	}

	reply := Message{
		ID:      resp.MessageID,
		Role:    RoleAssistant,
		Content: resp.Message,
	}
	c.transcript = append(c.transcript, reply)

	if c.activeID == "" {
		c.activeID = resp.ConversationID
		// New thread: refresh the history list so it shows up. A refresh
		// failure does not fail the send.
		if _, err := c.ListConversations(ctx); err != nil {
			log.Debug().Err(err).Msg("conversation list refresh failed after first send")
		}
	}

	return &reply, nil
}

// DeleteConversation removes a thread. Deleting the active one drops back to
// new-chat mode.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if !c.session.Authenticated() {
		return api.ErrUnauthorized
	}

	if err := c.api.Delete(ctx, "/chat/conversations/"+id); err != nil {
		return err
	}

	if c.activeID == id {
		c.activeID = ""
		c.transcript = nil
	}
	return nil
}

// RenameConversation updates a thread's title.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	if !c.session.Authenticated() {
		return api.ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" {
		return api.NewValidationError("Title cannot be empty")
	}

	path := "/chat/conversations/" + id + "/title?title=" + url.QueryEscape(title)
	return c.api.Post(ctx, path, nil, nil)
}
