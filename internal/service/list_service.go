package service

import (
	"context"
	"fmt"
	"strings"

	"reeltrack/internal/models"
	"reeltrack/internal/observability"
	"reeltrack/internal/repository"
	"reeltrack/internal/validation"
)

// ListService manages one of a user's movie lists. Favorites and watchlist
// are two instances with the same contract.
type ListService struct {
	kind     models.ListKind
	listRepo repository.ListRepository
	userRepo repository.UserRepository
}

// NewListService returns a ListService bound to kind. It panics on an
// unknown kind.
func NewListService(kind models.ListKind, listRepo repository.ListRepository, userRepo repository.UserRepository) *ListService {
	if !kind.Valid() {
		panic(fmt.Sprintf("service: unknown list kind %q", kind))
	}
	return &ListService{
		kind:     kind,
		listRepo: listRepo,
		userRepo: userRepo,
	}
}

// Kind reports which list the service manages.
func (s *ListService) Kind() models.ListKind {
	return s.kind
}

// AddItem appends ref to the user's list and returns the updated list.
// A movie already present is a Conflict and leaves the list unchanged.
func (s *ListService) AddItem(ctx context.Context, userID string, ref models.MovieRef) (items []models.MovieRef, err error) {
	ctx, span := observability.StartServiceSpan(ctx, s.spanService(), "AddItem")
	defer func() { observability.EndSpan(span, err) }()

	ref.MovieID = strings.TrimSpace(ref.MovieID)
	if err := validation.ValidateStruct(&ref); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	items, err = s.listRepo.GetItems(ctx, userID, s.kind)
	if err != nil {
		return nil, err
	}
	if models.ContainsMovie(items, ref.MovieID) {
		return nil, s.duplicateError()
	}

	// The storage layer rejects a duplicate that slipped in after the check above.
	if err := s.listRepo.AppendItem(ctx, userID, s.kind, ref); err != nil {
		return nil, err
	}
	observability.ListMutations.WithLabelValues(string(s.kind), "add").Inc()

	return s.listRepo.GetItems(ctx, userID, s.kind)
}

// RemoveItem drops every entry for movieID and returns the updated list.
// Removing an absent movie is not an error.
func (s *ListService) RemoveItem(ctx context.Context, userID, movieID string) (items []models.MovieRef, err error) {
	ctx, span := observability.StartServiceSpan(ctx, s.spanService(), "RemoveItem")
	defer func() { observability.EndSpan(span, err) }()

	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, models.NewValidationError("movieId is required")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.listRepo.RemoveItems(ctx, userID, s.kind, movieID); err != nil {
		return nil, err
	}
	observability.ListMutations.WithLabelValues(string(s.kind), "remove").Inc()

	return s.listRepo.GetItems(ctx, userID, s.kind)
}

// ListItems returns the list in insertion order.
func (s *ListService) ListItems(ctx context.Context, userID string) (items []models.MovieRef, err error) {
	ctx, span := observability.StartServiceSpan(ctx, s.spanService(), "ListItems")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.listRepo.GetItems(ctx, userID, s.kind)
}

// spanService names spans per list, e.g. "FavoritesService".
func (s *ListService) spanService() string {
	name := string(s.kind)
	return strings.ToUpper(name[:1]) + name[1:] + "Service"
}

func (s *ListService) duplicateError() error {
	return models.NewConflictError("Movie already in " + string(s.kind))
}
