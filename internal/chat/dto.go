package chat

const timeLayout = "2006-01-02T15:04:05Z"

// PostMessageRequest represents a new message
type PostMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// ReactRequest sets the caller's reaction
type ReactRequest struct {
	Reaction string `json:"reaction" validate:"required,max=32"`
}

// MessageResponse represents a message
type MessageResponse struct {
	ID         int64               `json:"id"`
	GroupID    int64               `json:"group_id"`
	UserID     int64               `json:"user_id"`
	AuthorName string              `json:"author_name,omitempty"`
	Content    string              `json:"content"`
	Reactions  []*ReactionResponse `json:"reactions"`
	CreatedAt  string              `json:"created_at"`
}

// ReactionResponse represents a reaction
type ReactionResponse struct {
	UserID   int64  `json:"user_id"`
	Reaction string `json:"reaction"`
}

// DeletedPayload is the data of a message.deleted event
type DeletedPayload struct {
	MessageID int64 `json:"message_id"`
	GroupID   int64 `json:"group_id"`
}

// ReactionPayload is the data of a message.reaction_updated event.
// Reaction is empty when the user cleared their reaction.
type ReactionPayload struct {
	MessageID int64               `json:"message_id"`
	GroupID   int64               `json:"group_id"`
	UserID    int64               `json:"user_id"`
	Reaction  string              `json:"reaction"`
	Reactions []*ReactionResponse `json:"reactions"`
}

func reactionResponses(reactions []Reaction) []*ReactionResponse {
	out := make([]*ReactionResponse, len(reactions))
	for i, r := range reactions {
		out[i] = &ReactionResponse{UserID: r.UserID, Reaction: r.Reaction}
	}
	return out
}

// ToResponse converts a Message model to a MessageResponse DTO
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		GroupID:    m.GroupID,
		UserID:     m.UserID,
		AuthorName: m.AuthorName,
		Content:    m.Content,
		Reactions:  reactionResponses(m.Reactions),
		CreatedAt:  m.CreatedAt.UTC().Format(timeLayout),
	}
}
