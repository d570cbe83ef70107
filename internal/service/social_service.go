package service

import (
	"context"
	"fmt"
	"log/slog"

	"reeltrack/internal/middleware"
	"reeltrack/internal/models"
	"reeltrack/internal/observability"
	"reeltrack/internal/repository"
)

// SocialService maintains the follow graph. A follow is stored on both users:
// the target in the caller's following set and the caller in the target's
// followers set. The two writes are independent; when the second fails the
// first is kept and the error is logged and returned.
type SocialService struct {
	userRepo     repository.UserRepository
	relationRepo repository.RelationRepository
}

// NewSocialService returns a new SocialService.
func NewSocialService(userRepo repository.UserRepository, relationRepo repository.RelationRepository) *SocialService {
	return &SocialService{
		userRepo:     userRepo,
		relationRepo: relationRepo,
	}
}

// Follow makes callerID follow targetID. Following twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, callerID, targetID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Follow")
	defer func() { observability.EndSpan(span, err) }()

	if callerID == targetID {
		return models.NewValidationError("You can't follow yourself.")
	}
	if err := s.ensureUsers(ctx, callerID, targetID); err != nil {
		return err
	}

	if err := s.relationRepo.AddRelation(ctx, callerID, models.RelationFollowing, targetID); err != nil {
		return err
	}
	if err := s.relationRepo.AddRelation(ctx, targetID, models.RelationFollowers, callerID); err != nil {
		return s.partialWrite(ctx, "follow", callerID, targetID, err)
	}

	observability.FollowOperations.WithLabelValues("follow").Inc()
	return nil
}

// Unfollow removes the follow relationship from both users. Unfollowing a
// user that is not followed is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, callerID, targetID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Unfollow")
	defer func() { observability.EndSpan(span, err) }()

	if callerID == targetID {
		return models.NewValidationError("You can't unfollow yourself.")
	}
	if err := s.ensureUsers(ctx, callerID, targetID); err != nil {
		return err
	}

	if err := s.relationRepo.RemoveRelation(ctx, callerID, models.RelationFollowing, targetID); err != nil {
		return err
	}
	if err := s.relationRepo.RemoveRelation(ctx, targetID, models.RelationFollowers, callerID); err != nil {
		return s.partialWrite(ctx, "unfollow", callerID, targetID, err)
	}

	observability.FollowOperations.WithLabelValues("unfollow").Inc()
	return nil
}

// Followers returns the users following userID.
func (s *SocialService) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.summaries(ctx, userID, models.RelationFollowers)
}

// Following returns the users userID follows.
func (s *SocialService) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.summaries(ctx, userID, models.RelationFollowing)
}

func (s *SocialService) summaries(ctx context.Context, userID string, kind models.RelationKind) ([]models.UserSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.relationRepo.GetRelations(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

func (s *SocialService) ensureUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SocialService) partialWrite(ctx context.Context, op, callerID, targetID string, cause error) error {
	observability.PartialRelationWrites.WithLabelValues(op).Inc()
	middleware.Logger.ErrorContext(ctx, "relationship updated on one side only",
		slog.String("operation", op),
		slog.String("caller_id", callerID),
		slog.String("target_id", targetID),
		slog.String("error", cause.Error()),
	)
	return models.NewInternalError(fmt.Errorf("%s %s -> %s: second write failed: %w", op, callerID, targetID, cause))
}
