package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parishkit/parishkit/api"
	"github.com/parishkit/parishkit/core/apiclient"
	"github.com/parishkit/parishkit/realtime"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parishctl",
		Short:         "Command-line client for the parish management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newMembersCmd(),
		newDonationsCmd(),
		newServicesCmd(),
		newPresentCmd(),
		newFollowCmd(),
	)
	return root
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if email == "" {
				email, err = prompt(cmd, "Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			resp, err := a.auth.Login(cmd.Context(), api.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}

			cmd.Printf("Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear local credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if !a.manager.IsPresent(cmd.Context()) {
				cmd.Println("Not logged in.")
				return nil
			}
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the locally stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			sess, err := a.manager.Current(cmd.Context())
			if err != nil {
				cmd.Println("Not logged in.")
				return nil
			}

			if sess.User != nil {
				cmd.Printf("%s (%s)\n", sess.User.Name, sess.User.Role)
			}
			if exp, ok := sess.ExpiresAt(); ok {
				cmd.Printf("Session expires %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newMembersCmd() *cobra.Command {
	members := &cobra.Command{
		Use:   "members",
		Short: "Work with the membership roster",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			records, err := a.members.List(cmd.Context(), status)
			if err != nil {
				return describeErr(err)
			}
			return printJSON(cmd, records)
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by membership status")

	members.AddCommand(list)
	return members
}

func newDonationsCmd() *cobra.Command {
	donations := &cobra.Command{
		Use:   "donations",
		Short: "Work with giving records",
	}

	var fund, from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List donations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			filter := api.DonationFilter{Fund: fund}
			if filter.From, err = parseDate(from); err != nil {
				return err
			}
			if filter.To, err = parseDate(to); err != nil {
				return err
			}

			records, err := a.donations.List(cmd.Context(), filter)
			if err != nil {
				return describeErr(err)
			}
			return printJSON(cmd, records)
		},
	}
	list.Flags().StringVar(&fund, "fund", "", "filter by fund")
	list.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")

	donations.AddCommand(list)
	return donations
}

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List upcoming worship services",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			records, err := a.worship.ListServices(cmd.Context())
			if err != nil {
				return describeErr(err)
			}
			return printJSON(cmd, records)
		},
	}
}

func newPresentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "present <service-id>",
		Short: "Drive a live presentation from the terminal",
		Long: `Drive a live presentation. Commands are read line by line from stdin:

  item <id>   switch to a setlist item
  slide <n>   move to slide n of the current item
  end         finish the presentation and exit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			conn, err := realtime.Dial(cmd.Context(), a.cfg.APIBaseURL, args[0], a.store)
			if err != nil {
				return err
			}
			defer conn.Close()

			cmd.Printf("Presenting service %s.\n", args[0])

			var itemID string
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}

				switch fields[0] {
				case "item":
					if len(fields) < 2 {
						cmd.Println("usage: item <id>")
						continue
					}
					itemID = fields[1]
					err = conn.Publish(cmd.Context(), realtime.Update{
						Type:   realtime.UpdateItem,
						ItemID: itemID,
					})
				case "slide":
					if len(fields) < 2 {
						cmd.Println("usage: slide <n>")
						continue
					}
					var slide int
					if _, convErr := fmt.Sscanf(fields[1], "%d", &slide); convErr != nil {
						cmd.Println("usage: slide <n>")
						continue
					}
					err = conn.Publish(cmd.Context(), realtime.Update{
						Type:   realtime.UpdateSlide,
						ItemID: itemID,
						Slide:  slide,
					})
				case "end":
					if err := conn.Publish(cmd.Context(), realtime.Update{Type: realtime.UpdateEnd}); err != nil {
						return err
					}
					return nil
				default:
					cmd.Printf("unknown command %q\n", fields[0])
					continue
				}
				if err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

func newFollowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <service-id>",
		Short: "Follow a live presentation, printing slide changes as they happen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			conn, err := realtime.Dial(cmd.Context(), a.cfg.APIBaseURL, args[0], a.store)
			if err != nil {
				return err
			}
			defer conn.Close()

			cmd.Printf("Following service %s. Press Ctrl+C to stop.\n", args[0])
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case update, open := <-conn.Updates():
					if !open {
						return nil
					}
					switch update.Type {
					case realtime.UpdateEnd:
						cmd.Println("Presentation ended.")
						return nil
					case realtime.UpdateItem:
						cmd.Printf("Now presenting item %s\n", update.ItemID)
					case realtime.UpdateSlide:
						cmd.Printf("Item %s, slide %d\n", update.ItemID, update.Slide)
					}
				}
			}
		},
	}
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	cmd.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return parsed, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

// describeErr rewrites the client's auth sentinels into operator-facing text.
func describeErr(err error) error {
	switch {
	case errors.Is(err, apiclient.ErrUnauthenticated):
		return errors.New("not logged in; run `parishctl login` first")
	case errors.Is(err, apiclient.ErrSessionExpired):
		return errors.New("session expired; run `parishctl login` again")
	default:
		return err
	}
}
