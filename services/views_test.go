package services

import (
	"testing"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverSlotViewsFixedLength(t *testing.T) {
	slots := []*models.TeamDriverSlot{
		{TeamID: 1, DriverID: 33, SlotPosition: 4, Driver: &models.Driver{FirstName: "Max", LastName: "Verstappen", RaceNumber: 1}},
		{TeamID: 1, DriverID: 44, SlotPosition: 1, Driver: &models.Driver{FirstName: "Lewis", LastName: "Hamilton", RaceNumber: 44}},
	}

	views := DriverSlotViews(slots)
	require.Len(t, views, models.DriverSlotCount)

	assert.Nil(t, views[0])
	assert.Nil(t, views[2])
	assert.Nil(t, views[3])
	require.NotNil(t, views[1])
	assert.Equal(t, 44, views[1].DriverID)
	require.NotNil(t, views[4])
	assert.Equal(t, "Max", views[4].FirstName)
}

func TestDriverSlotViewsEmpty(t *testing.T) {
	views := DriverSlotViews(nil)
	require.Len(t, views, models.DriverSlotCount)
	for _, view := range views {
		assert.Nil(t, view)
	}
}

func TestDriverSlotViewsIgnoresCorruptPositions(t *testing.T) {
	slots := []*models.TeamDriverSlot{
		{TeamID: 1, DriverID: 10, SlotPosition: -1},
		{TeamID: 1, DriverID: 11, SlotPosition: models.DriverSlotCount},
	}
	views := DriverSlotViews(slots)
	for _, view := range views {
		assert.Nil(t, view)
	}
}

func TestConstructorSlotViewsFixedLength(t *testing.T) {
	slots := []*models.TeamConstructorSlot{
		{TeamID: 1, ConstructorID: 3, SlotPosition: 1, Constructor: &models.Constructor{Name: "McLaren"}},
	}
	views := ConstructorSlotViews(slots)
	require.Len(t, views, models.ConstructorSlotCount)
	assert.Nil(t, views[0])
	require.NotNil(t, views[1])
	assert.Equal(t, "McLaren", views[1].Name)
}

func TestStandingViewsDenseRank(t *testing.T) {
	standings := []*models.LeagueStanding{
		{TeamID: 1, Points: 50, Team: &models.Team{Name: "Alpha"}},
		{TeamID: 2, Points: 30, Team: &models.Team{Name: "Beta"}},
		{TeamID: 3, Points: 30, Team: &models.Team{Name: "Gamma"}},
		{TeamID: 4, Points: 10, Team: &models.Team{Name: "Delta"}},
	}

	views := StandingViews(standings)
	require.Len(t, views, 4)
	assert.Equal(t, 1, views[0].Rank)
	assert.Equal(t, 2, views[1].Rank)
	assert.Equal(t, 2, views[2].Rank)
	// Плотный ранг: после разделенного второго места идет третье.
	assert.Equal(t, 3, views[3].Rank)
	assert.Equal(t, "Delta", views[3].TeamName)
}

func TestNewInvitePreviewFullFlag(t *testing.T) {
	league := &models.League{Name: "GP", MaxTeams: 2}

	preview := NewInvitePreview(league, nil, 1)
	assert.False(t, preview.IsLeagueFull)

	preview = NewInvitePreview(league, nil, 2)
	assert.True(t, preview.IsLeagueFull)
}
