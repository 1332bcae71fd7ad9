package services

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/rabnra2016/issue-tracker-mvp/internal/config"
	"github.com/rabnra2016/issue-tracker-mvp/internal/db"
	"github.com/rabnra2016/issue-tracker-mvp/internal/pubsub"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/issue"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/project"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
)

type Services struct {
	User    *user.UserService
	Project *project.ProjectService
	Issue   *issue.IssueService
	Policy  *member.Policy

	dbconn *sqlx.DB
	events pubsub.Publisher
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)

	var events pubsub.Publisher
	if conf.REDIS_ADDR != "" {
		rp, err := pubsub.NewRedisPublisher(conf.REDIS_ADDR, conf.REDIS_PASSWORD)
		if err != nil {
			slog.Warn("Failed to connect to Redis, falling back to log publisher", slog.Any("error", err))
			events = pubsub.NewLogPublisher()
		} else {
			slog.Info("Connected to Redis for issue event broadcasting")
			events = rp
		}
	} else {
		events = pubsub.NewLogPublisher()
	}

	userRepo := user.NewUserRepo(dbconn)
	memberRepo := member.NewMemberRepo(dbconn)
	projectRepo := project.NewProjectRepo(dbconn)
	issueRepo := issue.NewIssueRepo(dbconn)

	policy := member.NewPolicy(memberRepo)

	return &Services{
		User:    user.NewUserService(userRepo),
		Project: project.NewProjectService(projectRepo, userRepo, policy),
		Issue:   issue.NewIssueService(issueRepo, projectRepo, userRepo, policy, events),
		Policy:  policy,

		dbconn: dbconn,
		events: events,
	}
}

// Close releases the database and publisher connections.
func (s *Services) Close() {
	if rp, ok := s.events.(*pubsub.RedisPublisher); ok {
		if err := rp.Close(); err != nil {
			slog.Warn("Failed to close Redis publisher", slog.Any("error", err))
		}
	}
	if err := s.dbconn.Close(); err != nil {
		slog.Warn("Failed to close database connection", slog.Any("error", err))
	}
}
