package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/leaderboard"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/notification"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/metrics"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/users"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// UserOps is the user capability the router depends on.
type UserOps interface {
	Find(ctx context.Context, id int64) (user.User, bool, error)
	UpdateProfile(ctx context.Context, id int64, req users.ProfileUpdate) (user.View, error)
}

// SightingOps is the sighting capability the router depends on.
type SightingOps interface {
	Create(ctx context.Context, sg sighting.Sighting) (sighting.Sighting, error)
	Get(ctx context.Context, id int64) (sighting.Sighting, error)
	List(ctx context.Context) ([]sighting.Sighting, error)
	Update(ctx context.Context, id int64, upd sighting.Sighting) (sighting.Sighting, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationOps is the notification capability the router depends on.
type NotificationOps interface {
	Notify(ctx context.Context, userID int64, message string) (notification.Notification, error)
	ForUser(ctx context.Context, userID int64) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// LeaderboardOps is the ranking capability the router depends on.
type LeaderboardOps interface {
	Leaderboard(ctx context.Context) ([]leaderboard.Entry, error)
	TopN(ctx context.Context, n int) ([]leaderboard.Entry, error)
	UserRank(ctx context.Context, userID int64) (leaderboard.Entry, bool, error)
}

// ProfileView is the profile response: public user fields plus the
// leaderboard rank, nil while the user is unranked.
type ProfileView struct {
	user.View
	Rank *int `json:"rank"`
}

// Router dispatches command envelopes to the domain operations. It holds no
// state of its own; concurrent executions only meet in the stores behind
// the injected services. No error, expected or not, crosses Execute
// unformatted.
type Router struct {
	users         UserOps
	sightings     SightingOps
	notifications NotificationOps
	board         LeaderboardOps
	log           *logger.Logger
}

// NewRouter constructs a command router over the domain services.
func NewRouter(users UserOps, sightings SightingOps, notifications NotificationOps, board LeaderboardOps, log *logger.Logger) *Router {
	if log == nil {
		log = logger.NewDefault("command-router")
	}
	return &Router{
		users:         users,
		sightings:     sightings,
		notifications: notifications,
		board:         board,
		log:           log,
	}
}

// Execute validates the envelope, routes it, and always returns a
// well-formed result.
func (r *Router) Execute(ctx context.Context, env Envelope) (res Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("domain", env.Domain).
				WithField("action", env.Action).
				Errorf("command handler panicked: %v", rec)
			res = Errorf("Error executing command: %v", rec)
		}
		metrics.RecordCommand(strings.ToLower(env.Domain), strings.ToLower(env.Action), time.Since(start), res.Success)
	}()

	if strings.TrimSpace(env.Domain) == "" || strings.TrimSpace(env.Action) == "" {
		return Errorf("Invalid command: domain and action are required")
	}

	domain := Domain(strings.ToLower(env.Domain))
	action := Action(strings.ToLower(env.Action))

	var err error
	switch domain {
	case DomainUser:
		res, err = r.userCommand(ctx, action, env.Parameters)
	case DomainSighting:
		res, err = r.sightingCommand(ctx, action, env.Parameters)
	case DomainNotification:
		res, err = r.notificationCommand(ctx, action, env.Parameters)
	case DomainLeaderboard:
		res, err = r.leaderboardCommand(ctx, action, env.Parameters)
	case DomainProfile:
		res, err = r.profileCommand(ctx, action, env.Parameters)
	default:
		return Errorf("Unknown command type: %s", domain)
	}
	if err != nil {
		r.log.WithError(err).
			WithField("domain", string(domain)).
			WithField("action", string(action)).
			Warn("command failed")
		return Errorf("Error executing command: %v", err)
	}
	return res
}

func (r *Router) userCommand(ctx context.Context, action Action, params Params) (Result, error) {
	switch action {
	case ActionGet:
		userID, ok := params.Int64("userId")
		if !ok {
			return Errorf("userId is required"), nil
		}
		u, found, err := r.users.Find(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Errorf("User not found"), nil
		}
		return OK("User retrieved", u.AsView()), nil
	default:
		return Errorf("Unknown user action: %s", action), nil
	}
}

func (r *Router) sightingCommand(ctx context.Context, action Action, params Params) (Result, error) {
	switch action {
	case ActionCreate:
		sg, err := r.sightingFromParams(ctx, params)
		if err != nil {
			return Result{}, err
		}
		created, err := r.sightings.Create(ctx, sg)
		if err != nil {
			return Result{}, err
		}
		return OK("Sighting created", created), nil

	case ActionGet:
		id, ok := params.Int64("id")
		if !ok {
			return Errorf("Sighting id is required"), nil
		}
		sg, err := r.sightings.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Errorf("Sighting not found"), nil
		}
		if err != nil {
			return Result{}, err
		}
		return OK("Sighting retrieved", sg), nil

	case ActionGetAll:
		list, err := r.sightings.List(ctx)
		if err != nil {
			return Result{}, err
		}
		return OK("Sightings retrieved", list), nil

	case ActionUpdate:
		id, ok := params.Int64("id")
		if !ok {
			return Errorf("Sighting id is required"), nil
		}
		upd, err := r.sightingFromParams(ctx, params)
		if err != nil {
			return Result{}, err
		}
		saved, err := r.sightings.Update(ctx, id, upd)
		if errors.Is(err, storage.ErrNotFound) {
			return Errorf("Sighting not found"), nil
		}
		if err != nil {
			return Result{}, err
		}
		return OK("Sighting updated", saved), nil

	case ActionDelete:
		id, ok := params.Int64("id")
		if !ok {
			return Errorf("Sighting id is required"), nil
		}
		err := r.sightings.Delete(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Errorf("Sighting not found"), nil
		}
		if err != nil {
			return Result{}, err
		}
		return OK("Sighting deleted", nil), nil

	default:
		return Errorf("Unknown sighting action: %s", action), nil
	}
}

func (r *Router) notificationCommand(ctx context.Context, action Action, params Params) (Result, error) {
	switch action {
	case ActionGet:
		userID, ok := params.Int64("userId")
		if !ok {
			return Errorf("userId is required"), nil
		}
		if res, err := r.requireUser(ctx, userID); err != nil || res != nil {
			return deref(res), err
		}
		list, err := r.notifications.ForUser(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		return OK("Notifications retrieved", list), nil

	case ActionCreate:
		userID, hasUser := params.Int64("userId")
		message, hasMessage := params.String("message")
		if !hasUser || !hasMessage {
			return Errorf("userId and message are required"), nil
		}
		if res, err := r.requireUser(ctx, userID); err != nil || res != nil {
			return deref(res), err
		}
		created, err := r.notifications.Notify(ctx, userID, message)
		if err != nil {
			return Result{}, err
		}
		return OK("Notification created", created), nil

	case ActionMarkRead:
		id, ok := params.Int64("notificationId")
		if !ok {
			return Errorf("notificationId is required"), nil
		}
		if err := r.notifications.MarkRead(ctx, id); err != nil {
			return Result{}, err
		}
		return OK("Notification marked as read", nil), nil

	default:
		return Errorf("Unknown notification action: %s", action), nil
	}
}

func (r *Router) leaderboardCommand(ctx context.Context, action Action, params Params) (Result, error) {
	switch action {
	case ActionGet:
		entries, err := r.board.Leaderboard(ctx)
		if err != nil {
			return Result{}, err
		}
		return OK("Leaderboard retrieved", entries), nil

	case ActionGetTop:
		n, ok := params.Int("n")
		if !ok || n <= 0 || n > 100 {
			return Errorf("n must be between 1 and 100"), nil
		}
		entries, err := r.board.TopN(ctx, n)
		if err != nil {
			return Result{}, err
		}
		return OK("Top users retrieved", entries), nil

	case ActionGetUserRank:
		userID, ok := params.Int64("userId")
		if !ok {
			return Errorf("userId is required"), nil
		}
		entry, found, err := r.board.UserRank(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Errorf("User not found in leaderboard"), nil
		}
		return OK("User rank retrieved", entry), nil

	default:
		return Errorf("Unknown leaderboard action: %s", action), nil
	}
}

func (r *Router) profileCommand(ctx context.Context, action Action, params Params) (Result, error) {
	switch action {
	case ActionGet:
		userID, ok := params.Int64("userId")
		if !ok {
			return Errorf("userId is required"), nil
		}
		u, found, err := r.users.Find(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Errorf("User not found"), nil
		}
		profile, err := r.buildProfile(ctx, u.AsView())
		if err != nil {
			return Result{}, err
		}
		return OK("Profile retrieved", profile), nil

	case ActionUpdate:
		userID, ok := params.Int64("userId")
		if !ok {
			return Errorf("userId is required"), nil
		}
		var req users.ProfileUpdate
		if v, present := params.String("displayName"); present {
			req.DisplayName = &v
		}
		if v, present := params.String("bio"); present {
			req.Bio = &v
		}
		if v, present := params.String("profilePictureUrl"); present {
			req.ProfilePictureURL = &v
		}
		view, err := r.users.UpdateProfile(ctx, userID, req)
		if errors.Is(err, storage.ErrNotFound) {
			return Errorf("User not found"), nil
		}
		if err != nil {
			return Result{}, err
		}
		profile, err := r.buildProfile(ctx, view)
		if err != nil {
			return Result{}, err
		}
		return OK("Profile updated", profile), nil

	default:
		return Errorf("Unknown profile action: %s", action), nil
	}
}

// sightingFromParams shapes a sighting out of the loose parameter map. An
// owner reference that does not resolve to an existing user is dropped
// rather than rejected; the sighting is then stored anonymously.
func (r *Router) sightingFromParams(ctx context.Context, params Params) (sighting.Sighting, error) {
	var sg sighting.Sighting
	sg.Species, _ = params.String("species")
	sg.Location, _ = params.String("location")
	sg.Description, _ = params.String("description")
	sg.ImageURL, _ = params.String("imageUrl")
	if x, ok := params.Int("pixelX"); ok {
		sg.PixelX = &x
	}
	if y, ok := params.Int("pixelY"); ok {
		sg.PixelY = &y
	}

	if userID, ok := params.Int64("userId"); ok {
		_, found, err := r.users.Find(ctx, userID)
		if err != nil {
			return sighting.Sighting{}, err
		}
		if found {
			sg.UserID = &userID
		}
	}
	return sg, nil
}

// requireUser returns a not-found result when the user is absent, nil when
// present.
func (r *Router) requireUser(ctx context.Context, userID int64) (*Result, error) {
	_, found, err := r.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		res := Errorf("User not found")
		return &res, nil
	}
	return nil, nil
}

func (r *Router) buildProfile(ctx context.Context, v user.View) (ProfileView, error) {
	profile := ProfileView{View: v}
	entry, found, err := r.board.UserRank(ctx, v.ID)
	if err != nil {
		return ProfileView{}, err
	}
	if found {
		rank := entry.Rank
		profile.Rank = &rank
	}
	return profile, nil
}

func deref(res *Result) Result {
	if res == nil {
		return Result{}
	}
	return *res
}
