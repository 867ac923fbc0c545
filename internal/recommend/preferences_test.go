// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/questline/internal/models"
)

// fakeActivityReader records requested limits and serves fixed activity.
type fakeActivityReader struct {
	favorites []*models.Game
	liked     []*models.Game
	followed  []*models.Game
	reviews   []string
	lists     []string
	err       error

	limits map[string]int
}

func (r *fakeActivityReader) record(name string, limit int) {
	if r.limits == nil {
		r.limits = map[string]int{}
	}
	r.limits[name] = limit
}

func (r *fakeActivityReader) FavoriteGames(_ context.Context, _ string, limit int) ([]*models.Game, error) {
	r.record("favorites", limit)
	return r.favorites, r.err
}

func (r *fakeActivityReader) LikedGames(_ context.Context, _ string, limit int) ([]*models.Game, error) {
	r.record("liked", limit)
	return r.liked, nil
}

func (r *fakeActivityReader) FollowedUsersFavoriteGames(_ context.Context, _ string, limit int) ([]*models.Game, error) {
	r.record("followed", limit)
	return r.followed, nil
}

func (r *fakeActivityReader) LikedReviewTexts(_ context.Context, _ string, limit int) ([]string, error) {
	r.record("reviews", limit)
	return r.reviews, nil
}

func (r *fakeActivityReader) LikedListDescriptions(_ context.Context, _ string, limit int) ([]string, error) {
	r.record("lists", limit)
	return r.lists, nil
}

func (r *fakeActivityReader) FavoriteGameIDs(_ context.Context, _ string, ids []string) (map[string]bool, error) {
	return membershipOf(r.favorites, ids), r.err
}

func (r *fakeActivityReader) LikedGameIDs(_ context.Context, _ string, ids []string) (map[string]bool, error) {
	return membershipOf(r.liked, ids), nil
}

func (r *fakeActivityReader) FollowedFavoritesByGame(_ context.Context, _ string, ids []string) (map[string][]string, error) {
	out := map[string][]string{}
	for id := range membershipOf(r.followed, ids) {
		out[id] = []string{"Bob"}
	}
	return out, nil
}

func membershipOf(games []*models.Game, ids []string) map[string]bool {
	out := map[string]bool{}
	for _, g := range games {
		for _, id := range ids {
			if g.ID == id {
				out[id] = true
			}
		}
	}
	return out
}

var (
	hadesGame   = &models.Game{ID: "hades", Name: "Hades", Genres: []string{"Roguelike", "Action"}}
	deadCells   = &models.Game{ID: "dead-cells", Name: "Dead Cells", Genres: []string{"Roguelike"}}
	stardewGame = &models.Game{ID: "stardew", Name: "Stardew Valley", Genres: []string{"Simulation"}}
)

func TestPreferenceService_Profile(t *testing.T) {
	t.Parallel()

	reader := &fakeActivityReader{
		favorites: []*models.Game{hadesGame},
		liked:     []*models.Game{stardewGame},
		followed:  []*models.Game{deadCells},
		reviews:   []string{"Hades has the best combat loop"},
	}
	svc := NewPreferenceService(reader, testLogger())

	p, err := svc.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.IsEmpty() {
		t.Fatal("expected non-empty profile")
	}

	wantLimits := map[string]int{
		"favorites": FavoriteLimit,
		"liked":     LikedLimit,
		"followed":  FollowedFavoriteLimit,
		"reviews":   LikedReviewLimit,
		"lists":     LikedListLimit,
	}
	for name, want := range wantLimits {
		if got := reader.limits[name]; got != want {
			t.Errorf("%s limit: expected %d, got %d", name, want, got)
		}
	}

	in, err := svc.BuildUserPreferenceInput(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildUserPreferenceInput() error = %v", err)
	}
	if len(in.FavoriteGames) != 1 || in.FavoriteGames[0].Name != "Hades" {
		t.Errorf("unexpected favorite inputs %+v", in.FavoriteGames)
	}
	if len(in.FollowedUsersFavorites) != 1 || len(in.LikedReviewTexts) != 1 {
		t.Errorf("expected followed favorites and reviews to carry over, got %+v", in)
	}
}

func TestPreferenceService_ProfileError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	svc := NewPreferenceService(&fakeActivityReader{err: boom}, testLogger())
	if _, err := svc.Profile(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestPreferenceService_ActivitySet(t *testing.T) {
	t.Parallel()

	reader := &fakeActivityReader{
		favorites: []*models.Game{hadesGame},
		liked:     []*models.Game{stardewGame},
		followed:  []*models.Game{hadesGame},
	}
	svc := NewPreferenceService(reader, testLogger())

	set, err := svc.ActivitySet(context.Background(), "u1", []string{"hades", "stardew", "portal"})
	if err != nil {
		t.Fatalf("ActivitySet() error = %v", err)
	}

	m := set.Match("hades")
	if !m.IsUserFavorite || m.IsUserLiked || !m.IsFromFollowedUsers || len(m.FollowedUsersWhoLiked) != 1 {
		t.Errorf("unexpected hades match %+v", m)
	}
	if m := set.Match("stardew"); m.IsUserFavorite || !m.IsUserLiked || m.IsFromFollowedUsers {
		t.Errorf("unexpected stardew match %+v", m)
	}
	if m := set.Match("portal"); m.IsUserFavorite || m.IsUserLiked || m.FollowedUsersWhoLiked == nil {
		t.Errorf("expected empty non-nil match for portal, got %+v", m)
	}

	var none *ActivitySet
	if m := none.Match("hades"); m.IsUserFavorite || m.SimilarToUserFavorites == nil {
		t.Errorf("expected empty match from nil set, got %+v", m)
	}
}

func TestProfile_SimilarHints(t *testing.T) {
	t.Parallel()

	p := &Profile{
		FavoriteGames: []*models.Game{hadesGame, stardewGame},
		LikedGames:    []*models.Game{deadCells},
		LikedReviewTexts: []string{
			"I sank 200 hours into Isaac and never got bored of the item synergies",
			"Nothing beats Hades",
		},
		LikedListDescriptions: []string{"Best roguelikes: isaac, hades, spelunky"},
	}
	rec := &GameRecommendation{GameID: "isaac", Name: "Isaac", Genres: []string{"roguelike"}}
	m := emptyActivityMatch()
	p.similarHints(rec, &m)

	if !equalStrings(m.SimilarToUserFavorites, []string{"Hades"}) {
		t.Errorf("expected favorites [Hades], got %v", m.SimilarToUserFavorites)
	}
	if !equalStrings(m.SimilarToUserLikedGames, []string{"Dead Cells"}) {
		t.Errorf("expected liked [Dead Cells], got %v", m.SimilarToUserLikedGames)
	}
	wantReview := "I sank 200 hours into Isaac and never got bored of the item synergies"
	if len(m.SimilarToUserLikedReviews) != 1 || m.SimilarToUserLikedReviews[0] != wantReview {
		t.Errorf("expected one matching review, got %v", m.SimilarToUserLikedReviews)
	}
	if len(m.SimilarToUserLikedLists) != 1 {
		t.Errorf("expected one matching list, got %v", m.SimilarToUserLikedLists)
	}

	// The game itself is not listed as similar to itself.
	self := &GameRecommendation{GameID: "hades", Name: "Hades", Genres: []string{"Action"}}
	m = emptyActivityMatch()
	p.similarHints(self, &m)
	if len(m.SimilarToUserFavorites) != 0 {
		t.Errorf("expected no self match, got %v", m.SimilarToUserFavorites)
	}

	var nilProfile *Profile
	nilProfile.similarHints(rec, &m)
}
