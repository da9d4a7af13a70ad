package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/repositories"
)

// Потокобезопасные фейковые репозитории в памяти. Повторяют контракты
// postgres-реализаций, включая ошибки-сигналы, чтобы сервисы можно было
// проверять без базы данных.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, userID int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{nextID: 1, teams: make(map[int]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.IsDeleted {
			continue
		}
		if existing.OwnerID == team.OwnerID {
			return repositories.ErrTeamOwnerConflict
		}
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.nextID
	r.nextID++
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok || team.IsDeleted {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) GetByOwnerID(_ context.Context, ownerID int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, team := range r.teams {
		if team.OwnerID == ownerID && !team.IsDeleted {
			copied := *team
			return &copied, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.teams[team.ID]
	if !ok || existing.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, teamID int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok || team.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) SoftDelete(_ context.Context, teamID int, deletedBy int, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok || team.IsDeleted {
		return repositories.ErrTeamNotFound
	}
	team.StampDeleted(deletedBy, deletedAt)
	return nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	nextID  int
	drivers map[int]*models.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{nextID: 1, drivers: make(map[int]*models.Driver)}
}

func (r *fakeDriverRepo) Create(_ context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.drivers {
		if existing.RaceNumber == driver.RaceNumber {
			return repositories.ErrDriverNumberConflict
		}
	}
	driver.ID = r.nextID
	r.nextID++
	copied := *driver
	r.drivers[driver.ID] = &copied
	return nil
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id int) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, repositories.ErrDriverNotFound
	}
	copied := *driver
	return &copied, nil
}

func (r *fakeDriverRepo) List(_ context.Context, onlyActive bool) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Driver, 0, len(r.drivers))
	for _, driver := range r.drivers {
		if onlyActive && !driver.Active {
			continue
		}
		copied := *driver
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeDriverRepo) Update(_ context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[driver.ID]; !ok {
		return repositories.ErrDriverNotFound
	}
	copied := *driver
	r.drivers[driver.ID] = &copied
	return nil
}

func (r *fakeDriverRepo) UpdatePhotoKey(_ context.Context, driverID int, photoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[driverID]
	if !ok {
		return repositories.ErrDriverNotFound
	}
	driver.PhotoKey = photoKey
	return nil
}

type fakeConstructorRepo struct {
	mu           sync.Mutex
	nextID       int
	constructors map[int]*models.Constructor
}

func newFakeConstructorRepo() *fakeConstructorRepo {
	return &fakeConstructorRepo{nextID: 1, constructors: make(map[int]*models.Constructor)}
}

func (r *fakeConstructorRepo) Create(_ context.Context, constructor *models.Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.constructors {
		if existing.Name == constructor.Name {
			return repositories.ErrConstructorNameConflict
		}
	}
	constructor.ID = r.nextID
	r.nextID++
	copied := *constructor
	r.constructors[constructor.ID] = &copied
	return nil
}

func (r *fakeConstructorRepo) GetByID(_ context.Context, id int) (*models.Constructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	constructor, ok := r.constructors[id]
	if !ok {
		return nil, repositories.ErrConstructorNotFound
	}
	copied := *constructor
	return &copied, nil
}

func (r *fakeConstructorRepo) List(_ context.Context, onlyActive bool) ([]*models.Constructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Constructor, 0, len(r.constructors))
	for _, constructor := range r.constructors {
		if onlyActive && !constructor.Active {
			continue
		}
		copied := *constructor
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeConstructorRepo) Update(_ context.Context, constructor *models.Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.constructors[constructor.ID]; !ok {
		return repositories.ErrConstructorNotFound
	}
	copied := *constructor
	r.constructors[constructor.ID] = &copied
	return nil
}

func (r *fakeConstructorRepo) UpdateLogoKey(_ context.Context, constructorID int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	constructor, ok := r.constructors[constructorID]
	if !ok {
		return repositories.ErrConstructorNotFound
	}
	constructor.LogoKey = logoKey
	return nil
}

type fakeRosterRepo struct {
	mu               sync.Mutex
	nextID           int
	driverSlots      map[int][]*models.TeamDriverSlot
	constructorSlots map[int][]*models.TeamConstructorSlot
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{
		nextID:           1,
		driverSlots:      make(map[int][]*models.TeamDriverSlot),
		constructorSlots: make(map[int][]*models.TeamConstructorSlot),
	}
}

func (r *fakeRosterRepo) CreateDriverSlot(_ context.Context, slot *models.TeamDriverSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.driverSlots[slot.TeamID] {
		if existing.SlotPosition == slot.SlotPosition {
			return repositories.ErrSlotPositionConflict
		}
		if existing.DriverID == slot.DriverID {
			return repositories.ErrSlotDriverConflict
		}
	}
	slot.ID = r.nextID
	slot.CreatedAt = time.Now()
	r.nextID++
	copied := *slot
	r.driverSlots[slot.TeamID] = append(r.driverSlots[slot.TeamID], &copied)
	return nil
}

func (r *fakeRosterRepo) DeleteDriverSlot(_ context.Context, teamID, slotPosition int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slots := r.driverSlots[teamID]
	for i, slot := range slots {
		if slot.SlotPosition == slotPosition {
			r.driverSlots[teamID] = append(slots[:i], slots[i+1:]...)
			return nil
		}
	}
	return repositories.ErrSlotNotFound
}

func (r *fakeRosterRepo) ListDriverSlots(_ context.Context, teamID int) ([]*models.TeamDriverSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.TeamDriverSlot, 0, len(r.driverSlots[teamID]))
	for _, slot := range r.driverSlots[teamID] {
		copied := *slot
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeRosterRepo) CreateConstructorSlot(_ context.Context, slot *models.TeamConstructorSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.constructorSlots[slot.TeamID] {
		if existing.SlotPosition == slot.SlotPosition {
			return repositories.ErrSlotPositionConflict
		}
		if existing.ConstructorID == slot.ConstructorID {
			return repositories.ErrSlotConstructorConflict
		}
	}
	slot.ID = r.nextID
	slot.CreatedAt = time.Now()
	r.nextID++
	copied := *slot
	r.constructorSlots[slot.TeamID] = append(r.constructorSlots[slot.TeamID], &copied)
	return nil
}

func (r *fakeRosterRepo) DeleteConstructorSlot(_ context.Context, teamID, slotPosition int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slots := r.constructorSlots[teamID]
	for i, slot := range slots {
		if slot.SlotPosition == slotPosition {
			r.constructorSlots[teamID] = append(slots[:i], slots[i+1:]...)
			return nil
		}
	}
	return repositories.ErrSlotNotFound
}

func (r *fakeRosterRepo) ListConstructorSlots(_ context.Context, teamID int) ([]*models.TeamConstructorSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.TeamConstructorSlot, 0, len(r.constructorSlots[teamID]))
	for _, slot := range r.constructorSlots[teamID] {
		copied := *slot
		result = append(result, &copied)
	}
	return result, nil
}

type fakeLeagueRepo struct {
	mu      sync.Mutex
	nextID  int
	leagues map[int]*models.League
	members map[int][]*models.LeagueTeam
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{
		nextID:  1,
		leagues: make(map[int]*models.League),
		members: make(map[int][]*models.LeagueTeam),
	}
}

func (r *fakeLeagueRepo) Create(_ context.Context, league *models.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	league.ID = r.nextID
	r.nextID++
	copied := *league
	r.leagues[league.ID] = &copied
	return nil
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, id int) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	league, ok := r.leagues[id]
	if !ok || league.IsDeleted {
		return nil, repositories.ErrLeagueNotFound
	}
	copied := *league
	return &copied, nil
}

func (r *fakeLeagueRepo) ListByMemberTeam(_ context.Context, teamID int) ([]*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.League
	for leagueID, members := range r.members {
		league, ok := r.leagues[leagueID]
		if !ok || league.IsDeleted {
			continue
		}
		for _, member := range members {
			if member.TeamID == teamID {
				copied := *league
				result = append(result, &copied)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeLeagueRepo) ListPublic(_ context.Context) ([]*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.League
	for _, league := range r.leagues {
		if league.IsDeleted || league.IsPrivate {
			continue
		}
		copied := *league
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeLeagueRepo) Update(_ context.Context, league *models.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.leagues[league.ID]
	if !ok || existing.IsDeleted {
		return repositories.ErrLeagueNotFound
	}
	copied := *league
	r.leagues[league.ID] = &copied
	return nil
}

func (r *fakeLeagueRepo) SoftDelete(_ context.Context, leagueID int, deletedBy int, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	league, ok := r.leagues[leagueID]
	if !ok || league.IsDeleted {
		return repositories.ErrLeagueNotFound
	}
	league.StampDeleted(deletedBy, deletedAt)
	return nil
}

// AddTeam повторяет атомарность postgres-версии: проверка вместимости и
// вставка выполняются под одной блокировкой.
func (r *fakeLeagueRepo) AddTeam(_ context.Context, leagueID, teamID int, joinedAt time.Time) (*models.LeagueTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	league, ok := r.leagues[leagueID]
	if !ok || league.IsDeleted {
		return nil, repositories.ErrLeagueNotFound
	}
	for _, member := range r.members[leagueID] {
		if member.TeamID == teamID {
			return nil, repositories.ErrLeagueTeamConflict
		}
	}
	if len(r.members[leagueID]) >= league.MaxTeams {
		return nil, repositories.ErrLeagueFull
	}
	membership := &models.LeagueTeam{
		ID:       r.nextID,
		LeagueID: leagueID,
		TeamID:   teamID,
		JoinedAt: joinedAt,
	}
	r.nextID++
	r.members[leagueID] = append(r.members[leagueID], membership)
	copied := *membership
	return &copied, nil
}

func (r *fakeLeagueRepo) RemoveTeam(_ context.Context, leagueID, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.members[leagueID]
	for i, member := range members {
		if member.TeamID == teamID {
			r.members[leagueID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrLeagueMemberNotFound
}

func (r *fakeLeagueRepo) RemoveTeamFromAll(_ context.Context, teamID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for leagueID, members := range r.members {
		kept := members[:0]
		for _, member := range members {
			if member.TeamID == teamID {
				removed++
				continue
			}
			kept = append(kept, member)
		}
		r.members[leagueID] = kept
	}
	return removed, nil
}

func (r *fakeLeagueRepo) ListMembers(_ context.Context, leagueID int) ([]*models.LeagueTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.LeagueTeam, 0, len(r.members[leagueID]))
	for _, member := range r.members[leagueID] {
		copied := *member
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeLeagueRepo) CountMembers(_ context.Context, leagueID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members[leagueID]), nil
}

type fakeInviteRepo struct {
	mu      sync.Mutex
	nextID  int
	invites map[int]*models.LeagueInvite // по league_id
	leagues *fakeLeagueRepo
}

func newFakeInviteRepo(leagues *fakeLeagueRepo) *fakeInviteRepo {
	return &fakeInviteRepo{nextID: 1, invites: make(map[int]*models.LeagueInvite), leagues: leagues}
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.LeagueInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[invite.LeagueID]; ok {
		return repositories.ErrInviteLeagueConflict
	}
	for _, existing := range r.invites {
		if existing.Token == invite.Token {
			return repositories.ErrInviteTokenConflict
		}
	}
	invite.ID = r.nextID
	invite.CreatedAt = time.Now()
	r.nextID++
	copied := *invite
	r.invites[invite.LeagueID] = &copied
	return nil
}

func (r *fakeInviteRepo) GetByLeagueID(_ context.Context, leagueID int) (*models.LeagueInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.invites[leagueID]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	copied := *invite
	return &copied, nil
}

func (r *fakeInviteRepo) GetByToken(_ context.Context, token string) (*models.LeagueInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invite := range r.invites {
		if invite.Token != token {
			continue
		}
		// Приглашение живет только вместе с лигой.
		if r.leagues != nil {
			if league, ok := r.leagues.leagues[invite.LeagueID]; !ok || league.IsDeleted {
				return nil, repositories.ErrInviteNotFound
			}
		}
		copied := *invite
		return &copied, nil
	}
	return nil, repositories.ErrInviteNotFound
}

func (r *fakeInviteRepo) DeleteByLeagueID(_ context.Context, leagueID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[leagueID]; !ok {
		return repositories.ErrInviteNotFound
	}
	delete(r.invites, leagueID)
	return nil
}

func (r *fakeInviteRepo) DeleteOrphaned(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.leagues == nil {
		return 0, nil
	}
	var removed int64
	for leagueID := range r.invites {
		if league, ok := r.leagues.leagues[leagueID]; !ok || league.IsDeleted {
			delete(r.invites, leagueID)
			removed++
		}
	}
	return removed, nil
}

type standingKey struct {
	leagueID int
	teamID   int
}

type fakeStandingRepo struct {
	mu        sync.Mutex
	nextID    int
	standings map[standingKey]*models.LeagueStanding
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{nextID: 1, standings: make(map[standingKey]*models.LeagueStanding)}
}

func (r *fakeStandingRepo) AddPoints(_ context.Context, _ repositories.SQLExecutor, leagueID, teamID, points int) (*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := standingKey{leagueID: leagueID, teamID: teamID}
	standing, ok := r.standings[key]
	if !ok {
		standing = &models.LeagueStanding{
			ID:       r.nextID,
			LeagueID: leagueID,
			TeamID:   teamID,
		}
		r.nextID++
		r.standings[key] = standing
	}
	standing.Points += points
	standing.UpdatedAt = time.Now()
	copied := *standing
	return &copied, nil
}

func (r *fakeStandingRepo) ListByLeague(_ context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.LeagueStanding
	for key, standing := range r.standings {
		if key.leagueID == leagueID {
			copied := *standing
			result = append(result, &copied)
		}
	}
	// Тот же порядок, что и в SQL-версии: очки по убыванию.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Points != result[j].Points {
			return result[i].Points > result[j].Points
		}
		return result[i].TeamID < result[j].TeamID
	})
	return result, nil
}

func (r *fakeStandingRepo) DeleteByLeagueAndTeam(_ context.Context, leagueID, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := standingKey{leagueID: leagueID, teamID: teamID}
	if _, ok := r.standings[key]; !ok {
		return repositories.ErrStandingNotFound
	}
	delete(r.standings, key)
	return nil
}

func (r *fakeStandingRepo) DeleteByTeam(_ context.Context, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.standings {
		if key.teamID == teamID {
			delete(r.standings, key)
		}
	}
	return nil
}
