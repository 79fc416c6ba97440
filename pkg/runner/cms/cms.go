// Package cms runs the marketing site verbs: listing and reading blog posts,
// leaving a comment, and subscribing to the newsletter.
package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/backstage/pkg/cms"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/resource"
)

var errNoClient = errors.New("cms is not configured, set cms.project_id")

type Blogs struct {
	Client *cms.Client
	Limit  int
	JSON   bool
	Out    io.Writer
}

func (b *Blogs) Do(ctx context.Context) error {
	if b.Client == nil {
		return errNoClient
	}
	blogs, err := b.Client.Blogs(ctx, b.Limit)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: b.Out, JSON: b.JSON}
	if b.JSON {
		return pp.Value(blogs)
	}

	pp.NewLine()
	pp.Title("Blog", len(blogs))
	if len(blogs) == 0 {
		return nil
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("Slug"), bold.Sprint("Title"), bold.Sprint("Author"), bold.Sprint("Published"), bold.Sprint("Views"))
	for _, post := range blogs {
		tbl.AddRow(faint.Sprint(post.Slug), post.Title, post.Author, day(post.PublishedAt), post.Views)
	}
	_, _ = fmt.Fprintln(out(b.Out), tbl)
	return nil
}

type View struct {
	Client *cms.Client
	Slug   string
	// Count adds a view to the post when the client can write.
	Count bool
	Width int
	JSON  bool
	Out   io.Writer
}

func (v *View) Do(ctx context.Context) error {
	if v.Client == nil {
		return errNoClient
	}
	post, err := v.Client.BlogBySlug(ctx, v.Slug)
	if err != nil {
		return err
	}
	if v.Count && v.Client.CanWrite() {
		if err := v.Client.IncrementViews(ctx, post.ID); err == nil {
			post.Views++
		}
	}
	pp := printers.PrettyPrint{Out: v.Out, JSON: v.JSON}
	if v.JSON {
		return pp.Value(post)
	}
	text, err := Render(post, v.Width)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(out(v.Out), text)
	return nil
}

// Render formats a post and its approved comments as terminal markdown.
func Render(post *cms.Blog, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", post.Title)
	var meta []string
	if post.Author != "" {
		meta = append(meta, "by "+post.Author)
	}
	if d := day(post.PublishedAt); d != "" {
		meta = append(meta, d)
	}
	meta = append(meta, fmt.Sprintf("%d views", post.Views))
	fmt.Fprintf(&md, "*%s*\n\n", strings.Join(meta, " · "))
	if post.Excerpt != "" {
		fmt.Fprintf(&md, "%s\n\n", post.Excerpt)
	}
	if len(post.Comments) > 0 {
		fmt.Fprintf(&md, "## Comments (%d)\n\n", len(post.Comments))
		for _, c := range post.Comments {
			fmt.Fprintf(&md, "> **%s** %s\n>\n> %s\n\n", c.Name, day(c.CreatedAt), c.Comment)
		}
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md.String())
}

type Comment struct {
	Client  *cms.Client
	Slug    string
	Name    string
	Email   string
	Message string
	Out     io.Writer
}

func (c *Comment) Do(ctx context.Context) error {
	if c.Client == nil {
		return errNoClient
	}
	if !c.Client.CanWrite() {
		return cms.ErrReadOnly
	}
	post, err := c.Client.BlogBySlug(ctx, c.Slug)
	if err != nil {
		return err
	}
	if _, err := c.Client.AppendComment(ctx, post.ID, cms.Comment{Name: c.Name, Email: c.Email, Comment: c.Message}); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: c.Out}
	pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: "Comment sent, it will show once approved"})
	return nil
}

type Subscribe struct {
	Client *cms.Client
	Email  string
	Out    io.Writer
}

func (s *Subscribe) Do(ctx context.Context) error {
	if s.Client == nil {
		return errNoClient
	}
	if !s.Client.CanWrite() {
		return cms.ErrReadOnly
	}
	if _, err := s.Client.Subscribe(ctx, s.Email); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: "Subscribed " + strings.ToLower(strings.TrimSpace(s.Email))})
	return nil
}

// day trims an RFC 3339 timestamp to its date.
func day(ts string) string {
	if len(ts) >= len("2006-01-02") {
		return ts[:len("2006-01-02")]
	}
	return ts
}

func out(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}
