package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/runner/cms"
)

func addCMS(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "cms",
		Short: "read and interact with the public blog",
	}

	var limit int
	blogsOut := &options.OutputOptions{}
	blogs := &cobra.Command{
		Use:   "blogs",
		Short: "list published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.cms()
			if err != nil {
				return blogsOut.HandleError(err)
			}
			b := cms.Blogs{Client: client, Limit: limit, JSON: blogsOut.JSON, Out: cmd.OutOrStdout()}
			return blogsOut.HandleError(b.Do(cmd.Context()))
		},
	}
	blogs.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of posts.")
	options.AddOutputArg(blogs, blogsOut)

	var (
		count bool
		width int
	)
	viewOut := &options.OutputOptions{}
	view := &cobra.Command{
		Use:   "view <slug>",
		Short: "render a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.cms()
			if err != nil {
				return viewOut.HandleError(err)
			}
			v := cms.View{Client: client, Slug: args[0], Count: count, Width: width, JSON: viewOut.JSON, Out: cmd.OutOrStdout()}
			return viewOut.HandleError(v.Do(cmd.Context()))
		},
	}
	view.Flags().BoolVar(&count, "count", false, "Count this read towards the post's views, needs a CMS token.")
	view.Flags().IntVarP(&width, "width", "w", 80, "Wrap width.")
	options.AddOutputArg(view, viewOut)

	var name, email, message string
	comment := &cobra.Command{
		Use:   "comment <slug>",
		Short: "comment on a post",
		Example: `
backstage cms comment spring-release-notes --name Sam --email sam@example.com --message "Great mix."
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.cms()
			if err != nil {
				return err
			}
			c := cms.Comment{Client: client, Slug: args[0], Name: name, Email: email, Message: message, Out: cmd.OutOrStdout()}
			return c.Do(cmd.Context())
		},
	}
	comment.Flags().StringVar(&name, "name", "", "Commenter name.")
	comment.Flags().StringVar(&email, "email", "", "Commenter email.")
	comment.Flags().StringVarP(&message, "message", "m", "", "Comment text.")
	_ = comment.MarkFlagRequired("name")
	_ = comment.MarkFlagRequired("message")

	subscribe := &cobra.Command{
		Use:   "subscribe <email>",
		Short: "add an address to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.cms()
			if err != nil {
				return err
			}
			s := cms.Subscribe{Client: client, Email: args[0], Out: cmd.OutOrStdout()}
			return s.Do(cmd.Context())
		},
	}

	cmd.AddCommand(blogs, view, comment, subscribe)
	topLevel.AddCommand(cmd)
}
