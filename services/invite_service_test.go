package services

import (
	"context"
	"testing"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inviteFixture struct {
	service    InviteService
	inviteRepo *fakeInviteRepo
	leagueRepo *fakeLeagueRepo
	teamRepo   *fakeTeamRepo
	userRepo   *fakeUserRepo
	league     *models.League
	ownerID    int
}

func newInviteFixture(t *testing.T, maxTeams int) *inviteFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	owner := &models.User{FirstName: "Алия", LastName: "Садыкова", Email: "owner@example.com", Role: models.RolePlayer}
	require.NoError(t, userRepo.Create(context.Background(), owner))

	leagueRepo := newFakeLeagueRepo()
	league := &models.League{Name: "Monaco Masters", OwnerID: owner.ID, MaxTeams: maxTeams}
	require.NoError(t, leagueRepo.Create(context.Background(), league))

	teamRepo := newFakeTeamRepo()
	inviteRepo := newFakeInviteRepo(leagueRepo)

	return &inviteFixture{
		service:    NewInviteService(inviteRepo, leagueRepo, teamRepo, userRepo, nil),
		inviteRepo: inviteRepo,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		league:     league,
		ownerID:    owner.ID,
	}
}

func (f *inviteFixture) addMemberTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	user := &models.User{FirstName: name, Email: name + "@example.com", Role: models.RolePlayer}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	team := &models.Team{Name: name, OwnerID: user.ID}
	require.NoError(t, f.teamRepo.Create(context.Background(), team))
	return team
}

func TestGetOrCreateInviteIdempotent(t *testing.T) {
	f := newInviteFixture(t, 10)

	first, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	// Повторный запрос возвращает тот же токен, не новый.
	second, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestGetOrCreateInviteOwnerOnly(t *testing.T) {
	f := newInviteFixture(t, 10)

	_, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID+100)
	assert.ErrorIs(t, err, ErrLeagueOwnerOnly)
}

func TestGetOrCreateInviteLeagueNotFound(t *testing.T) {
	f := newInviteFixture(t, 10)

	_, err := f.service.GetOrCreateInvite(context.Background(), 9999, f.ownerID)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestPreviewInvite(t *testing.T) {
	f := newInviteFixture(t, 2)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	team := f.addMemberTeam(t, "Quick Silver")
	_, err = f.leagueRepo.AddTeam(context.Background(), f.league.ID, team.ID, time.Now())
	require.NoError(t, err)

	preview, err := f.service.PreviewInvite(context.Background(), invite.Token)
	require.NoError(t, err)
	assert.Equal(t, "Monaco Masters", preview.LeagueName)
	assert.Equal(t, "Алия Садыкова", preview.OwnerName)
	assert.Equal(t, 1, preview.CurrentTeamCount)
	assert.Equal(t, 2, preview.MaxTeams)
	assert.False(t, preview.IsLeagueFull)
}

func TestPreviewInviteFullLeague(t *testing.T) {
	f := newInviteFixture(t, 1)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	team := f.addMemberTeam(t, "Quick Silver")
	_, err = f.leagueRepo.AddTeam(context.Background(), f.league.ID, team.ID, time.Now())
	require.NoError(t, err)

	preview, err := f.service.PreviewInvite(context.Background(), invite.Token)
	require.NoError(t, err)
	assert.True(t, preview.IsLeagueFull)
}

func TestPreviewInviteUnknownToken(t *testing.T) {
	f := newInviteFixture(t, 10)

	_, err := f.service.PreviewInvite(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestPreviewInviteDeletedLeague(t *testing.T) {
	f := newInviteFixture(t, 10)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	require.NoError(t, f.leagueRepo.SoftDelete(context.Background(), f.league.ID, f.ownerID, time.Now()))

	// Токен мертвой лиги ведет себя как несуществующий.
	_, err = f.service.PreviewInvite(context.Background(), invite.Token)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestJoinViaInvite(t *testing.T) {
	f := newInviteFixture(t, 10)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	team := f.addMemberTeam(t, "Quick Silver")

	view, err := f.service.JoinViaInvite(context.Background(), invite.Token, team.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.MemberCount)

	count, err := f.leagueRepo.CountMembers(context.Background(), f.league.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestJoinViaInviteWithoutTeam(t *testing.T) {
	f := newInviteFixture(t, 10)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	user := &models.User{FirstName: "Безкоманды", Email: "noteam@example.com", Role: models.RolePlayer}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	_, err = f.service.JoinViaInvite(context.Background(), invite.Token, user.ID)
	assert.ErrorIs(t, err, ErrTeamRequired)
}

func TestJoinViaInviteFullLeague(t *testing.T) {
	f := newInviteFixture(t, 1)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	first := f.addMemberTeam(t, "First")
	_, err = f.service.JoinViaInvite(context.Background(), invite.Token, first.OwnerID)
	require.NoError(t, err)

	second := f.addMemberTeam(t, "Second")
	_, err = f.service.JoinViaInvite(context.Background(), invite.Token, second.OwnerID)
	assert.ErrorIs(t, err, ErrLeagueFull)
}

func TestJoinViaInviteTwice(t *testing.T) {
	f := newInviteFixture(t, 10)
	invite, err := f.service.GetOrCreateInvite(context.Background(), f.league.ID, f.ownerID)
	require.NoError(t, err)

	team := f.addMemberTeam(t, "Quick Silver")
	_, err = f.service.JoinViaInvite(context.Background(), invite.Token, team.OwnerID)
	require.NoError(t, err)

	_, err = f.service.JoinViaInvite(context.Background(), invite.Token, team.OwnerID)
	assert.ErrorIs(t, err, ErrAlreadyLeagueMember)
}
