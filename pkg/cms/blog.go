package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Blog is a published post.
type Blog struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt string    `json:"publishedAt,omitempty"`
	Views       int       `json:"views"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Comment is a reader comment. New comments wait for moderation.
type Comment struct {
	Key       string `json:"_key"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Comment   string `json:"comment"`
	Approved  bool   `json:"approved"`
	CreatedAt string `json:"createdAt"`
}

const blogProjection = `{_id, title, "slug": slug.current, excerpt, "author": author->name, publishedAt, "views": coalesce(views, 0)}`

// Blogs lists the newest posts.
func (c *Client) Blogs(ctx context.Context, limit int) ([]Blog, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `*[_type == "blog" && defined(slug.current)] | order(publishedAt desc)[0...$limit]` + blogProjection
	var blogs []Blog
	if err := c.Query(ctx, q, map[string]any{"limit": limit}, &blogs); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Blog{}, nil
		}
		return nil, err
	}
	return blogs, nil
}

// BlogBySlug returns one post with its approved comments.
func (c *Client) BlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	q := `*[_type == "blog" && slug.current == $slug][0]{_id, title, "slug": slug.current, excerpt, "author": author->name, publishedAt, "views": coalesce(views, 0), "comments": comments[approved == true]}`
	var b Blog
	if err := c.Query(ctx, q, map[string]any{"slug": slug}, &b); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: blog %q", ErrNotFound, slug)
		}
		return nil, err
	}
	return &b, nil
}

// IncrementViews adds one view to a post.
func (c *Client) IncrementViews(ctx context.Context, id string) error {
	_, err := c.Mutate(ctx, PatchMutation(Patch{
		ID:           id,
		SetIfMissing: map[string]any{"views": 0},
		Inc:          map[string]any{"views": 1},
	}))
	return err
}

// AppendComment adds an unapproved comment to the end of a post's comments.
func (c *Client) AppendComment(ctx context.Context, blogID string, cm Comment) (Comment, error) {
	cm.Name = strings.TrimSpace(cm.Name)
	cm.Comment = strings.TrimSpace(cm.Comment)
	if cm.Name == "" || cm.Comment == "" {
		return Comment{}, errors.New("cms: comment needs a name and a message")
	}
	if cm.Email != "" {
		if _, err := mail.ParseAddress(cm.Email); err != nil {
			return Comment{}, fmt.Errorf("cms: invalid email %q", cm.Email)
		}
	}
	cm.Key = uuid.NewString()
	cm.Approved = false
	cm.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := c.Mutate(ctx, PatchMutation(Patch{
		ID:           blogID,
		SetIfMissing: map[string]any{"comments": []any{}},
		Insert:       &Insert{After: "comments[-1]", Items: []any{cm}},
	}))
	if err != nil {
		return Comment{}, err
	}
	return cm, nil
}

// SubscriberID is the deterministic document id for an email, so repeated
// sign-ups do not create duplicates.
func SubscriberID(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "subscriber-" + hex.EncodeToString(sum[:8])
}

// Subscribe adds email to the newsletter. Subscribing twice is a no-op.
func (c *Client) Subscribe(ctx context.Context, email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("cms: invalid email %q", email)
	}
	id := SubscriberID(addr.Address)
	_, err = c.Mutate(ctx, CreateIfNotExists(map[string]any{
		"_id":          id,
		"_type":        "subscriber",
		"email":        strings.ToLower(addr.Address),
		"subscribedAt": time.Now().UTC().Format(time.RFC3339),
	}))
	if err != nil {
		return "", err
	}
	return id, nil
}
