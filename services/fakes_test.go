package services

import (
	"context"
	"sync"
	"time"

	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

// Фейки повторяют контракт Postgres-репозиториев, включая условные
// UPDATE (ClaimSlot, MarkReviewed, ConsumeUse), чтобы тесты гонок
// упражняли ту же семантику, что и продакшен.

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type notifierEvent struct {
	LobbyID int
	Event   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (n *recordingNotifier) NotifyLobby(lobbyID int, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifierEvent{LobbyID: lobbyID, Event: event})
}

func (n *recordingNotifier) all() []notifierEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifierEvent, len(n.events))
	copy(out, n.events)
	return out
}

// --- players ---

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
	// activeLobbyMode имитирует occupancy-подзапрос ListByRatingRange.
	activeLobbyMode map[int]string
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		nextID:          1,
		players:         make(map[int]*models.Player),
		activeLobbyMode: make(map[int]string),
	}
}

func (r *fakePlayerRepo) add(p *models.Player) *models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.players[p.ID] = p
	return p
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	r.add(player)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) ApplyRatingDelta(ctx context.Context, exec repositories.SQLExecutor, id, delta, floor, threshold, maxLevel int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	rating := p.Rating + delta
	if rating < floor {
		rating = floor
	}
	level := rating / threshold
	if level > maxLevel {
		level = maxLevel
	}
	p.Rating = rating
	p.Level = level
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) ListByRatingRange(ctx context.Context, rr repositories.RatingRange) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*models.Player
	for _, p := range r.players {
		if p.ID == rr.ExcludePlayerID || p.Rating < rr.Min || p.Rating > rr.Max {
			continue
		}
		if p.Suspended(now) {
			continue
		}
		if rr.ExcludeActiveLobbyMode != "" && r.activeLobbyMode[p.ID] == rr.ExcludeActiveLobbyMode {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePlayerRepo) ListTopByRating(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for _, p := range r.players {
		cp := *p
		out = append(out, &cp)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Rating > out[i].Rating {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePlayerRepo) SetBanState(ctx context.Context, exec repositories.SQLExecutor, id int, banned bool, expires *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.IsBanned = banned
	p.BanExpires = expires
	return nil
}

func (r *fakePlayerRepo) SetPrivilege(ctx context.Context, exec repositories.SQLExecutor, id int, level models.PrivilegeLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Privilege = level
	return nil
}

func (r *fakePlayerRepo) ClearExpiredBans(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var n int64
	for _, p := range r.players {
		if p.IsBanned && p.BanExpires != nil && p.BanExpires.Before(now) {
			p.IsBanned = false
			p.BanExpires = nil
			n++
		}
	}
	return n, nil
}

// --- lobbies ---

type fakeLobbyRepo struct {
	mu      sync.Mutex
	nextID  int
	lobbies map[int]*models.Lobby
	members *fakeLobbyMemberRepo
}

func newFakeLobbyRepo(members *fakeLobbyMemberRepo) *fakeLobbyRepo {
	return &fakeLobbyRepo{nextID: 1, lobbies: make(map[int]*models.Lobby), members: members}
}

func (r *fakeLobbyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, lobby *models.Lobby) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobby.ID = r.nextID
	r.nextID++
	lobby.CreatedAt = time.Now()
	cp := *lobby
	r.lobbies[lobby.ID] = &cp
	return nil
}

func (r *fakeLobbyRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[id]
	if !ok {
		return nil, repositories.ErrLobbyNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLobbyRepo) ClaimSlot(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[id]
	if !ok {
		return nil, repositories.ErrLobbyNotFound
	}
	if l.Status != models.LobbyStatusOpen || l.CurrentPlayers >= l.MaxPlayers {
		return nil, repositories.ErrLobbySlotUnavailable
	}
	l.CurrentPlayers++
	if l.CurrentPlayers >= l.MaxPlayers {
		l.Status = models.LobbyStatusFull
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLobbyRepo) ReleaseSlot(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[id]
	if !ok {
		return nil, repositories.ErrLobbyNotFound
	}
	if l.CurrentPlayers > 0 {
		l.CurrentPlayers--
	}
	if l.Status == models.LobbyStatusFull {
		l.Status = models.LobbyStatusOpen
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLobbyRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from []models.LobbyStatus, to models.LobbyStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[id]
	if !ok {
		return repositories.ErrLobbyNotFound
	}
	for _, f := range from {
		if l.Status == f {
			l.Status = to
			return nil
		}
	}
	return repositories.ErrLobbyStateConflict
}

func (r *fakeLobbyRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[id]; !ok {
		return repositories.ErrLobbyNotFound
	}
	delete(r.lobbies, id)
	if r.members != nil {
		r.members.deleteByLobby(id)
	}
	return nil
}

func (r *fakeLobbyRepo) ListPublic(ctx context.Context, filter repositories.LobbyFilter) ([]*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lobby
	for _, l := range r.lobbies {
		if !l.IsPublic {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLobbyRepo) FindActiveIDByPlayerAndMode(ctx context.Context, playerID int, mode string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members == nil {
		return 0, repositories.ErrLobbyNotFound
	}
	for _, l := range r.lobbies {
		if l.Mode != mode || l.Status.Terminal() {
			continue
		}
		if r.members.isMember(l.ID, playerID) {
			return l.ID, nil
		}
	}
	return 0, repositories.ErrLobbyNotFound
}

// --- lobby members ---

type fakeLobbyMemberRepo struct {
	mu      sync.Mutex
	members map[[2]int]*models.LobbyMember
	order   [][2]int
}

func newFakeLobbyMemberRepo() *fakeLobbyMemberRepo {
	return &fakeLobbyMemberRepo{members: make(map[[2]int]*models.LobbyMember)}
}

func (r *fakeLobbyMemberRepo) Create(ctx context.Context, exec repositories.SQLExecutor, member *models.LobbyMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{member.LobbyID, member.PlayerID}
	if _, ok := r.members[key]; ok {
		return repositories.ErrLobbyMemberConflict
	}
	cp := *member
	r.members[key] = &cp
	r.order = append(r.order, key)
	return nil
}

func (r *fakeLobbyMemberRepo) Get(ctx context.Context, exec repositories.SQLExecutor, lobbyID, playerID int) (*models.LobbyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[[2]int{lobbyID, playerID}]
	if !ok {
		return nil, repositories.ErrLobbyMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeLobbyMemberRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, lobbyID, playerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{lobbyID, playerID}
	if _, ok := r.members[key]; !ok {
		return repositories.ErrLobbyMemberNotFound
	}
	delete(r.members, key)
	return nil
}

func (r *fakeLobbyMemberRepo) ListByLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) ([]*models.LobbyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LobbyMember
	for _, key := range r.order {
		if key[0] != lobbyID {
			continue
		}
		if m, ok := r.members[key]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLobbyMemberRepo) isMember(lobbyID, playerID int) bool {
	_, ok := r.members[[2]int{lobbyID, playerID}]
	return ok
}

func (r *fakeLobbyMemberRepo) deleteByLobby(lobbyID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.members {
		if key[0] == lobbyID {
			delete(r.members, key)
		}
	}
}

func (r *fakeLobbyMemberRepo) count(lobbyID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key := range r.members {
		if key[0] == lobbyID {
			n++
		}
	}
	return n
}

// --- lobby bans ---

type fakeLobbyBanRepo struct {
	mu   sync.Mutex
	bans map[[2]int]*models.LobbyBan
}

func newFakeLobbyBanRepo() *fakeLobbyBanRepo {
	return &fakeLobbyBanRepo{bans: make(map[[2]int]*models.LobbyBan)}
}

func (r *fakeLobbyBanRepo) Create(ctx context.Context, exec repositories.SQLExecutor, ban *models.LobbyBan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{ban.LobbyID, ban.PlayerID}
	if _, ok := r.bans[key]; ok {
		return repositories.ErrLobbyBanConflict
	}
	cp := *ban
	r.bans[key] = &cp
	return nil
}

func (r *fakeLobbyBanRepo) get(lobbyID, playerID int) *models.LobbyBan {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bans[[2]int{lobbyID, playerID}]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (r *fakeLobbyBanRepo) Exists(ctx context.Context, exec repositories.SQLExecutor, lobbyID, playerID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bans[[2]int{lobbyID, playerID}]
	return ok, nil
}

func (r *fakeLobbyBanRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, lobbyID, playerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{lobbyID, playerID}
	if _, ok := r.bans[key]; !ok {
		return repositories.ErrLobbyBanNotFound
	}
	delete(r.bans, key)
	return nil
}

// --- lobby messages ---

type fakeLobbyMessageRepo struct {
	mu       sync.Mutex
	nextID   int
	messages []*models.LobbyMessage
}

func newFakeLobbyMessageRepo() *fakeLobbyMessageRepo {
	return &fakeLobbyMessageRepo{nextID: 1}
}

func (r *fakeLobbyMessageRepo) Create(ctx context.Context, message *models.LobbyMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = r.nextID
	r.nextID++
	message.CreatedAt = time.Now()
	cp := *message
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeLobbyMessageRepo) ListByLobby(ctx context.Context, lobbyID, limit int) ([]*models.LobbyMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LobbyMessage
	for _, m := range r.messages {
		if m.LobbyID == lobbyID {
			cp := *m
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// --- invites ---

type fakeInviteRepo struct {
	mu      sync.Mutex
	nextID  int
	byLobby map[int]*models.LobbyInvite
	codes   map[string]bool
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{nextID: 1, byLobby: make(map[int]*models.LobbyInvite), codes: make(map[string]bool)}
}

func (r *fakeInviteRepo) Create(ctx context.Context, exec repositories.SQLExecutor, invite *models.LobbyInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byLobby[invite.LobbyID]; ok {
		return repositories.ErrInviteLobbyConflict
	}
	if r.codes[invite.Code] {
		return repositories.ErrInviteCodeConflict
	}
	invite.ID = r.nextID
	r.nextID++
	invite.CreatedAt = time.Now()
	cp := *invite
	r.byLobby[invite.LobbyID] = &cp
	r.codes[invite.Code] = true
	return nil
}

func (r *fakeInviteRepo) GetByLobbyID(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) (*models.LobbyInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byLobby[lobbyID]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInviteRepo) ConsumeUse(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byLobby {
		if inv.ID != id {
			continue
		}
		if inv.MaxUses != nil && inv.UsesCount >= *inv.MaxUses {
			return repositories.ErrInviteUsesExhausted
		}
		inv.UsesCount++
		return nil
	}
	return repositories.ErrInviteNotFound
}

// --- parties ---

type fakePartyRepo struct {
	mu      sync.Mutex
	nextID  int
	parties map[int]*models.Party
	members map[int][]int
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{nextID: 1, parties: make(map[int]*models.Party), members: make(map[int][]int)}
}

func (r *fakePartyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, party *models.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	party.ID = r.nextID
	r.nextID++
	party.CreatedAt = time.Now()
	cp := *party
	r.parties[party.ID] = &cp
	r.members[party.ID] = []int{party.LeaderID}
	return nil
}

func (r *fakePartyRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[id]
	if !ok {
		return nil, repositories.ErrPartyNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartyRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parties[id]; !ok {
		return repositories.ErrPartyNotFound
	}
	delete(r.parties, id)
	delete(r.members, id)
	return nil
}

func (r *fakePartyRepo) AddMember(ctx context.Context, exec repositories.SQLExecutor, member *models.PartyMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[member.PartyID] {
		if id == member.PlayerID {
			return repositories.ErrPartyMemberConflict
		}
	}
	r.members[member.PartyID] = append(r.members[member.PartyID], member.PlayerID)
	return nil
}

func (r *fakePartyRepo) RemoveMember(ctx context.Context, exec repositories.SQLExecutor, partyID, playerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.members[partyID]
	for i, id := range ids {
		if id == playerID {
			r.members[partyID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPartyMemberNotFound
}

func (r *fakePartyRepo) ListMembers(ctx context.Context, exec repositories.SQLExecutor, partyID int) ([]*models.PartyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PartyMember
	for _, id := range r.members[partyID] {
		out = append(out, &models.PartyMember{PartyID: partyID, PlayerID: id})
	}
	return out, nil
}

func (r *fakePartyRepo) CountMembers(ctx context.Context, exec repositories.SQLExecutor, partyID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members[partyID]), nil
}

func (r *fakePartyRepo) FindByMemberAndMode(ctx context.Context, playerID int, mode string) (*models.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for partyID, ids := range r.members {
		p := r.parties[partyID]
		if p == nil || p.Mode != mode {
			continue
		}
		for _, id := range ids {
			if id == playerID {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, repositories.ErrPartyNotFound
}

// --- submissions ---

type fakeSubmissionRepo struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*models.ResultSubmission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{nextID: 1, subs: make(map[int]*models.ResultSubmission)}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, sub *models.ResultSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.LobbyID == sub.LobbyID && s.Status == models.SubmissionStatusPending {
			return repositories.ErrSubmissionPendingConflict
		}
	}
	sub.ID = r.nextID
	r.nextID++
	sub.CreatedAt = time.Now()
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.ResultSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, repositories.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) MarkReviewed(ctx context.Context, exec repositories.SQLExecutor, id int, status models.SubmissionStatus, reviewerID int, notes *string, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || s.Status != models.SubmissionStatusPending {
		return repositories.ErrSubmissionNotPending
	}
	s.Status = status
	s.ReviewedBy = &reviewerID
	s.Notes = notes
	s.ReviewedAt = &reviewedAt
	return nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context, filter repositories.SubmissionFilter) ([]*models.ResultSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ResultSubmission
	for _, s := range r.subs {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// --- player bans / admin actions ---

type fakeBanRepo struct {
	mu     sync.Mutex
	nextID int
	bans   []*models.PlayerBan
}

func newFakeBanRepo() *fakeBanRepo { return &fakeBanRepo{nextID: 1} }

func (r *fakeBanRepo) Create(ctx context.Context, exec repositories.SQLExecutor, ban *models.PlayerBan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ban.ID = r.nextID
	r.nextID++
	ban.CreatedAt = time.Now()
	cp := *ban
	r.bans = append(r.bans, &cp)
	return nil
}

func (r *fakeBanRepo) DeactivateByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bans {
		if b.PlayerID == playerID && b.IsActive {
			b.IsActive = false
			n++
		}
	}
	return n, nil
}

func (r *fakeBanRepo) ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.PlayerBan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlayerBan
	for _, b := range r.bans {
		if b.PlayerID == playerID && b.IsActive {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAdminActionRepo struct {
	mu      sync.Mutex
	nextID  int
	actions []*models.AdminAction
}

func newFakeAdminActionRepo() *fakeAdminActionRepo { return &fakeAdminActionRepo{nextID: 1} }

func (r *fakeAdminActionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, action *models.AdminAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	action.ID = r.nextID
	r.nextID++
	action.CreatedAt = time.Now()
	cp := *action
	r.actions = append(r.actions, &cp)
	return nil
}

func (r *fakeAdminActionRepo) List(ctx context.Context, filter repositories.AdminActionFilter) ([]*models.AdminAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AdminAction
	for _, a := range r.actions {
		if filter.AdminID != 0 && a.AdminID != filter.AdminID {
			continue
		}
		if filter.TargetPlayerID != 0 && a.TargetPlayerID != filter.TargetPlayerID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
