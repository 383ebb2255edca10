package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/application"
	"github.com/oksasatya/go-ddd-user-context/internal/container"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-context/internal/worker"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-context/pkg/mailer"
)

type action func(ctx context.Context, cmd *cli.Command, s *container.Services) error

// withServices bootstraps the infrastructure around fn.
func withServices(fn action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cleanup, err := bootstrap(ctx, cmd.Bool("in-memory"))
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(ctx, cmd, container.BuildServices())
	}
}

// userAction runs fn on the <user-id> argument and prints the resulting user.
func userAction(fn func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error)) cli.ActionFunc {
	return withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
		id, err := arg(cmd, 0, "user-id")
		if err != nil {
			return err
		}
		u, err := fn(ctx, s, id, cmd)
		if err != nil {
			return err
		}
		return printJSON(u.Snapshot())
	})
}

func arg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("missing argument <%s>", name))
	}
	return v, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mailerFromConfig(cfg *config.Config) *mailer.Mailgun {
	return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
}

func migrationCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Apply pending database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
				return postgres.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger)
			},
		},
		{
			Name:  "rollback",
			Usage: "Revert applied database migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1, Usage: "Number of migrations to revert"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
				return postgres.RollbackMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, int(cmd.Int("steps")), logger)
			},
		},
	}
}

func userCommands() []*cli.Command {
	cmds := []*cli.Command{
		{
			Name:  "register",
			Usage: "Register a pending user",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Email address"},
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Optional username"},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Optional password"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				u, err := s.Users.Register(ctx, application.RegisterInput{
					Email:    cmd.String("email"),
					Username: cmd.String("username"),
					Password: cmd.String("password"),
				})
				if err != nil {
					return err
				}
				return printJSON(u.Snapshot())
			}),
		},
		{
			Name:      "show",
			Usage:     "Show a user by id, or by email with --email",
			ArgsUsage: "[user-id]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Look the user up by email"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				var (
					u   *entity.User
					err error
				)
				if email := cmd.String("email"); email != "" {
					u, err = s.Users.GetByEmail(ctx, email)
				} else {
					var id string
					if id, err = arg(cmd, 0, "user-id"); err != nil {
						return err
					}
					u, err = s.Users.Get(ctx, id)
				}
				if err != nil {
					return err
				}
				return printJSON(u.Snapshot())
			}),
		},
		{
			Name:      "change-email",
			Usage:     "Move a user to a new email address",
			ArgsUsage: "<user-id> <email>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error) {
				email, err := arg(cmd, 1, "email")
				if err != nil {
					return nil, err
				}
				return s.Users.ChangeEmail(ctx, id, email)
			}),
		},
		{
			Name:      "send-verification",
			Usage:     "Issue an email verification code and mail it",
			ArgsUsage: "<user-id>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				return sendVerification(ctx, s, id)
			}),
		},
		{
			Name:      "verify-email",
			Usage:     "Confirm a user's email with a code, or force it with --force",
			ArgsUsage: "<user-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Usage: "Code sent to the user"},
				&cli.BoolFlag{Name: "force", Usage: "Mark verified without a code"},
			},
			Action: userAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error) {
				if code := cmd.String("code"); code != "" {
					return s.Verification.ConfirmEmail(ctx, id, code)
				}
				if !cmd.Bool("force") {
					return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "either --code or --force is required")
				}
				return s.Users.VerifyEmail(ctx, id)
			}),
		},
		{
			Name:      "assign-phone",
			Usage:     "Assign a phone number in international format",
			ArgsUsage: "<user-id> <phone>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error) {
				phone, err := arg(cmd, 1, "phone")
				if err != nil {
					return nil, err
				}
				return s.Users.AssignPhone(ctx, id, phone)
			}),
		},
		{
			Name:      "verify-phone",
			Usage:     "Mark the assigned phone number verified",
			ArgsUsage: "<user-id>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.User, error) {
				return s.Users.VerifyPhone(ctx, id)
			}),
		},
		{
			Name:      "assign-username",
			Usage:     "Assign a username",
			ArgsUsage: "<user-id> <username>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error) {
				name, err := arg(cmd, 1, "username")
				if err != nil {
					return nil, err
				}
				return s.Users.AssignUsername(ctx, id, name)
			}),
		},
		{
			Name:      "link-external-id",
			Usage:     "Link the identifier of an external identity provider",
			ArgsUsage: "<user-id> <external-id>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.User, error) {
				ext, err := arg(cmd, 1, "external-id")
				if err != nil {
					return nil, err
				}
				return s.Users.LinkExternalID(ctx, id, ext)
			}),
		},
		{
			Name:      "activate",
			Usage:     "Activate a pending or suspended user",
			ArgsUsage: "<user-id>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.User, error) {
				return s.Users.Activate(ctx, id)
			}),
		},
		{
			Name:      "suspend",
			Usage:     "Suspend an active user",
			ArgsUsage: "<user-id>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.User, error) {
				return s.Users.Suspend(ctx, id)
			}),
		},
		{
			Name:      "delete",
			Usage:     "Soft-delete a user",
			ArgsUsage: "<user-id>",
			Action: userAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.User, error) {
				return s.Users.Delete(ctx, id)
			}),
		},
		{
			Name:      "set-password",
			Usage:     "Set or replace a user's password",
			ArgsUsage: "<user-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Usage: "New password"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				if err := s.Users.SetPassword(ctx, id, cmd.String("password")); err != nil {
					return err
				}
				fmt.Println("password updated")
				return nil
			}),
		},
		{
			Name:      "search",
			Usage:     "Search users by email, username, phone or external id",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 10, Usage: "Maximum hits"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				q, err := arg(cmd, 0, "query")
				if err != nil {
					return err
				}
				hits, err := s.Users.Search(ctx, q, int(cmd.Int("limit")))
				if err != nil {
					return err
				}
				return printJSON(hits)
			}),
		},
	}
	cmds = append(cmds, roleCommands()...)
	cmds = append(cmds, sessionCommands()...)
	cmds = append(cmds, profileCommands()...)
	return append(cmds, subscriptionCommands()...)
}

// sendVerification mails a code when Mailgun is configured. Without it the
// code is printed, which only development allows.
func sendVerification(ctx context.Context, s *container.Services, id string) error {
	cfg := container.GetConfig()
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.EmailVerified() {
		return vo.NewAlreadyVerifiedError(vo.CategoryEmail)
	}

	mg := container.GetMailgun()
	if mg == nil {
		if cfg.Env != "development" {
			return errors.New("mail is not configured")
		}
		_, code, err := s.Verification.IssueEmailCode(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(code)
	}

	h := &worker.Handler{
		Cfg:      cfg,
		Users:    s.Users.Users,
		Codes:    s.Verification,
		Mail:     mg,
		Location: cfg.EmailLocation(),
		Logger:   container.GetLogger(),
	}
	if err := h.SendCode(ctx, u); err != nil {
		return err
	}
	fmt.Printf("verification email sent to %s\n", u.Email())
	return nil
}

func roleCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "ensure-role",
			Usage:     "Create a role unless it exists",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "display-name", Usage: "Human readable name"},
				&cli.StringFlag{Name: "description", Usage: "What the role is for"},
				&cli.StringSliceFlag{Name: "permission", Aliases: []string{"p"}, Usage: "Permission granted by the role (repeatable)"},
				&cli.BoolFlag{Name: "system", Usage: "Mark the role as built in"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				name, err := arg(cmd, 0, "name")
				if err != nil {
					return err
				}
				role, err := s.Users.EnsureRole(ctx, name, cmd.String("display-name"), cmd.String("description"),
					cmd.StringSlice("permission"), cmd.Bool("system"))
				if err != nil {
					return err
				}
				return printJSON(role)
			}),
		},
		{
			Name:      "assign-role",
			Usage:     "Grant a role to a user",
			ArgsUsage: "<user-id> <role>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "granted-by", Usage: "Id of the granting user"},
				&cli.StringFlag{Name: "expires", Usage: "Expiry in RFC 3339"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				role, err := arg(cmd, 1, "role")
				if err != nil {
					return err
				}
				in := application.AssignRoleInput{UserID: id, Role: role, GrantedBy: cmd.String("granted-by")}
				if raw := cmd.String("expires"); raw != "" {
					t, err := time.Parse(time.RFC3339, raw)
					if err != nil {
						return apperrors.Wrap(apperrors.ErrInvalidInput, "expires: "+err.Error())
					}
					in.ExpiresAt = &t
				}
				ur, err := s.Users.AssignRole(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(ur)
			}),
		},
		{
			Name:      "roles",
			Usage:     "List the roles currently granted to a user",
			ArgsUsage: "<user-id>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				roles, err := s.Users.RolesOf(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(roles)
			}),
		},
	}
}

func sessionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Log in with email and password and print the tokens",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				&cli.StringFlag{Name: "ip", Usage: "Client IP recorded on the session"},
				&cli.StringFlag{Name: "user-agent", Value: "users-cli"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				res, err := s.Auth.Login(ctx, application.LoginInput{
					Email:     cmd.String("email"),
					Password:  cmd.String("password"),
					IP:        cmd.String("ip"),
					UserAgent: cmd.String("user-agent"),
				})
				if err != nil {
					return err
				}
				return printJSON(res)
			}),
		},
		{
			Name:      "authorize",
			Usage:     "Resolve an access token to its session",
			ArgsUsage: "<token>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				token, err := arg(cmd, 0, "token")
				if err != nil {
					return err
				}
				sess, err := s.Auth.Authorize(ctx, token)
				if err != nil {
					return err
				}
				return printJSON(sess)
			}),
		},
		{
			Name:      "revoke-tokens",
			Usage:     "Invalidate every access token of a session",
			ArgsUsage: "<session-id>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "session-id")
				if err != nil {
					return err
				}
				return s.Auth.RevokeTokens(ctx, id)
			}),
		},
		{
			Name:      "logout",
			Usage:     "Terminate a session",
			ArgsUsage: "<session-id>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "session-id")
				if err != nil {
					return err
				}
				return s.Auth.Logout(ctx, id)
			}),
		},
	}
}

func profileCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "profile",
			Usage:     "Show a user's profile",
			ArgsUsage: "<user-id>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				p, err := s.Profiles.Get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(p)
			}),
		},
		{
			Name:      "update-profile",
			Usage:     "Change profile fields; only the given flags are applied",
			ArgsUsage: "<user-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "first-name"},
				&cli.StringFlag{Name: "last-name"},
				&cli.StringFlag{Name: "display-name"},
				&cli.StringFlag{Name: "bio"},
				&cli.StringFlag{Name: "gender", Usage: "male, female, other or prefer_not_to_say"},
				&cli.StringFlag{Name: "birth-date", Usage: "YYYY-MM-DD"},
				&cli.StringFlag{Name: "locale", Usage: "Language tag such as es-CO"},
				&cli.StringFlag{Name: "timezone", Usage: "IANA zone such as America/Bogota"},
			},
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				in, err := profileInput(cmd)
				if err != nil {
					return err
				}
				p, err := s.Profiles.Update(ctx, id, in)
				if err != nil {
					return err
				}
				return printJSON(p)
			}),
		},
		{
			Name:      "upload-avatar",
			Usage:     "Upload an avatar image for a user",
			ArgsUsage: "<user-id> <file>",
			Action: withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
				id, err := arg(cmd, 0, "user-id")
				if err != nil {
					return err
				}
				path, err := arg(cmd, 1, "file")
				if err != nil {
					return err
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()

				head := make([]byte, 512)
				n, err := io.ReadFull(f, head)
				if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
					return err
				}
				if _, err := f.Seek(0, io.SeekStart); err != nil {
					return err
				}
				url, err := s.Profiles.UploadAvatar(ctx, id, http.DetectContentType(head[:n]), f)
				if err != nil {
					return err
				}
				fmt.Println(url)
				return nil
			}),
		},
	}
}

func profileInput(cmd *cli.Command) (application.ProfileInput, error) {
	var in application.ProfileInput
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.String(name)
		return &v
	}
	in.FirstName = str("first-name")
	in.LastName = str("last-name")
	in.DisplayName = str("display-name")
	in.Bio = str("bio")
	in.Gender = str("gender")
	in.Locale = str("locale")
	in.Timezone = str("timezone")
	if raw := str("birth-date"); raw != nil {
		t, err := time.Parse(time.DateOnly, *raw)
		if err != nil {
			return in, apperrors.Wrap(apperrors.ErrInvalidInput, "birth-date: "+err.Error())
		}
		in.BirthDate = &t
	}
	return in, nil
}

// subscriptionAction runs fn on the <user-id> argument and prints the plan.
func subscriptionAction(fn func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.UserSubscription, error)) cli.ActionFunc {
	return withServices(func(ctx context.Context, cmd *cli.Command, s *container.Services) error {
		id, err := arg(cmd, 0, "user-id")
		if err != nil {
			return err
		}
		sub, err := fn(ctx, s, id, cmd)
		if err != nil {
			return err
		}
		return printJSON(sub)
	})
}

func subscriptionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "subscription",
			Usage:     "Show a user's subscription",
			ArgsUsage: "<user-id>",
			Action: subscriptionAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.UserSubscription, error) {
				return s.Subscriptions.Get(ctx, id)
			}),
		},
		{
			Name:      "subscribe",
			Usage:     "Start a subscription",
			ArgsUsage: "<user-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "tier", Aliases: []string{"t"}, Required: true, Usage: "free, basic, premium or enterprise"},
				&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "Duration in days; 0 never expires"},
				&cli.BoolFlag{Name: "auto-renew"},
				&cli.StringFlag{Name: "payment-method"},
			},
			Action: subscriptionAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.UserSubscription, error) {
				return s.Subscriptions.Subscribe(ctx, id, application.SubscribeInput{
					Tier:          cmd.String("tier"),
					Days:          int(cmd.Int("days")),
					AutoRenew:     cmd.Bool("auto-renew"),
					PaymentMethod: cmd.String("payment-method"),
				})
			}),
		},
		{
			Name:      "renew-subscription",
			Usage:     "Extend an auto-renewing subscription",
			ArgsUsage: "<user-id>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Value: 30},
			},
			Action: subscriptionAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.UserSubscription, error) {
				return s.Subscriptions.Renew(ctx, id, int(cmd.Int("days")))
			}),
		},
		{
			Name:      "change-tier",
			Usage:     "Move an active subscription to another tier",
			ArgsUsage: "<user-id> <tier>",
			Action: subscriptionAction(func(ctx context.Context, s *container.Services, id string, cmd *cli.Command) (*entity.UserSubscription, error) {
				tier, err := arg(cmd, 1, "tier")
				if err != nil {
					return nil, err
				}
				return s.Subscriptions.ChangeTier(ctx, id, tier)
			}),
		},
		{
			Name:      "cancel-subscription",
			Usage:     "Cancel a subscription",
			ArgsUsage: "<user-id>",
			Action: subscriptionAction(func(ctx context.Context, s *container.Services, id string, _ *cli.Command) (*entity.UserSubscription, error) {
				return s.Subscriptions.Cancel(ctx, id)
			}),
		},
	}
}
