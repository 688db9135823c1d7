package feedback

import "time"

type Kind string

const (
	KindEmployee Kind = "employee"
	KindManager  Kind = "manager"
)

type Feedback struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	OwnerID    string    `json:"ownerId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Feedback   string    `json:"feedback"`
	Reply      string    `json:"reply"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Input struct {
	Feedback string `json:"feedback"`
}

type ReplyInput struct {
	Reply string `json:"reply"`
}
