package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/models"
)

type lobbyFixture struct {
	players  *fakePlayerRepo
	lobbies  *fakeLobbyRepo
	members  *fakeLobbyMemberRepo
	bans     *fakeLobbyBanRepo
	invites  *fakeInviteRepo
	messages *fakeLobbyMessageRepo
	notifier *recordingNotifier
	svc      LobbyService
}

func newLobbyFixture() *lobbyFixture {
	members := newFakeLobbyMemberRepo()
	f := &lobbyFixture{
		players:  newFakePlayerRepo(),
		lobbies:  newFakeLobbyRepo(members),
		members:  members,
		bans:     newFakeLobbyBanRepo(),
		invites:  newFakeInviteRepo(),
		messages: newFakeLobbyMessageRepo(),
		notifier: &recordingNotifier{},
	}
	f.svc = NewLobbyService(f.lobbies, f.members, f.bans, f.invites, f.messages, f.players, fakeTx{}, config.DefaultCatalog(), f.notifier)
	return f
}

func (f *lobbyFixture) player(name string) *models.Player {
	return f.players.add(&models.Player{Username: name, Rating: 1000, Level: 1})
}

func (f *lobbyFixture) openLobby(t *testing.T, creatorID, capacity int) *models.Lobby {
	t.Helper()
	lobby, err := f.svc.Create(context.Background(), creatorID, CreateLobbyParams{
		Name:     "evening ladder",
		Mode:     "2v2",
		Server:   "Majestic RP #3",
		Capacity: capacity,
		IsPublic: true,
	})
	require.NoError(t, err)
	return lobby
}

func TestLobbyCreateValidation(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, creator.ID, CreateLobbyParams{Name: "ab", Mode: "2v2", Server: "Majestic RP #1", Capacity: 4, IsPublic: true})
	assert.ErrorIs(t, err, ErrLobbyNameTooShort)

	_, err = f.svc.Create(ctx, creator.ID, CreateLobbyParams{Name: "okay", Mode: "4v4", Server: "Majestic RP #1", Capacity: 4, IsPublic: true})
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = f.svc.Create(ctx, creator.ID, CreateLobbyParams{Name: "okay", Mode: "2v2", Server: "Majestic RP #99", Capacity: 4, IsPublic: true})
	assert.ErrorIs(t, err, ErrInvalidServer)

	_, err = f.svc.Create(ctx, creator.ID, CreateLobbyParams{Name: "okay", Mode: "2v2", Server: "Majestic RP #1", Capacity: 1, IsPublic: true})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = f.svc.Create(ctx, creator.ID, CreateLobbyParams{Name: "okay", Mode: "2v2", Server: "Majestic RP #1", Capacity: 11, IsPublic: true})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestLobbyCreateSeedsCreatorMember(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")

	lobby := f.openLobby(t, creator.ID, 4)

	assert.Equal(t, 1, lobby.CurrentPlayers)
	assert.Equal(t, models.LobbyStatusOpen, lobby.Status)
	assert.True(t, f.members.isMember(lobby.ID, creator.ID))

	// Нормализация регистра сервера.
	mixed, err := f.svc.Create(context.Background(), f.player("other").ID, CreateLobbyParams{
		Name: "late night", Mode: "1v1", Server: "majestic rp #7", Capacity: 2, IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Majestic RP #7", mixed.Server)
}

func TestLobbyJoinContractOrder(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	joiner := f.player("guest")
	ctx := context.Background()

	// Несуществующее лобби важнее любых прочих отказов.
	_, err := f.svc.Join(ctx, 404, joiner.ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrLobbyNotFound)

	lobby := f.openLobby(t, creator.ID, 4)

	// Бан перекрывает даже валидные учётные данные.
	require.NoError(t, f.bans.Create(ctx, nil, &models.LobbyBan{LobbyID: lobby.ID, PlayerID: joiner.ID, AdminID: creator.ID, Reason: "greefing"}))
	_, err = f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrLobbyBanned)
	require.NoError(t, f.bans.Delete(ctx, nil, lobby.ID, joiner.ID))

	// Обычный вход.
	outcome, err := f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{})
	require.NoError(t, err)
	assert.False(t, outcome.Rejoined)
	assert.Equal(t, 2, outcome.Lobby.CurrentPlayers)

	// Повторный вход идемпотентен.
	outcome, err = f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{})
	require.NoError(t, err)
	assert.True(t, outcome.Rejoined)
	assert.Equal(t, 2, outcome.Lobby.CurrentPlayers, "occupancy unchanged on rejoin")

	// Стартовавшее лобби закрыто для новых игроков.
	require.NoError(t, f.svc.Start(ctx, lobby.ID, creator.ID))
	_, err = f.svc.Join(ctx, lobby.ID, f.player("late").ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrLobbyStarted)
}

func TestLobbyJoinPrivatePassword(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	joiner := f.player("guest")
	ctx := context.Background()

	lobby, err := f.svc.Create(ctx, creator.ID, CreateLobbyParams{
		Name: "members only", Mode: "2v2", Server: "Majestic RP #2",
		Capacity: 4, IsPublic: false, Password: "hunter2",
	})
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrWrongPassword)

	outcome, err := f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Lobby.CurrentPlayers)
}

func TestLobbyJoinInviteBypassesPassword(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	joiner := f.player("guest")
	ctx := context.Background()

	lobby, err := f.svc.Create(ctx, creator.ID, CreateLobbyParams{
		Name: "members only", Mode: "2v2", Server: "Majestic RP #2",
		Capacity: 4, IsPublic: false, Password: "hunter2",
	})
	require.NoError(t, err)

	invite := &models.LobbyInvite{LobbyID: lobby.ID, Code: "deadbeef", CreatedBy: creator.ID}
	require.NoError(t, f.invites.Create(ctx, nil, invite))

	// Чужой код не принимается.
	_, err = f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{InviteCode: "bogus"})
	assert.ErrorIs(t, err, ErrInviteInvalid)

	// Валидный код открывает приватное лобби без пароля.
	outcome, err := f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{InviteCode: "deadbeef"})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Lobby.CurrentPlayers)

	got, err := f.invites.GetByLobbyID(ctx, nil, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsesCount, "use consumed on successful join")
}

func TestLobbyJoinInviteExpiryAndUses(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 6)

	past := time.Now().Add(-time.Minute)
	invite := &models.LobbyInvite{LobbyID: lobby.ID, Code: "oldcode", CreatedBy: creator.ID, ExpiresAt: &past}
	require.NoError(t, f.invites.Create(ctx, nil, invite))

	_, err := f.svc.Join(ctx, lobby.ID, f.player("a").ID, JoinCredentials{InviteCode: "oldcode"})
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestLobbyJoinFillsToCapacityAndFlipsStatus(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)

	for i := 0; i < 2; i++ {
		outcome, err := f.svc.Join(ctx, lobby.ID, f.player(fmt.Sprintf("p%d", i)).ID, JoinCredentials{})
		require.NoError(t, err)
		assert.Equal(t, models.LobbyStatusOpen, outcome.Lobby.Status)
	}

	last := f.player("last")
	outcome, err := f.svc.Join(ctx, lobby.ID, last.ID, JoinCredentials{})
	require.NoError(t, err)
	assert.Equal(t, models.LobbyStatusFull, outcome.Lobby.Status)
	assert.Equal(t, 4, outcome.Lobby.CurrentPlayers)

	_, err = f.svc.Join(ctx, lobby.ID, f.player("extra").ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrLobbyFull)

	// Уход возвращает full → open.
	require.NoError(t, f.svc.Leave(ctx, lobby.ID, last.ID))
	reopened, err := f.lobbies.GetByID(ctx, nil, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LobbyStatusOpen, reopened.Status)
}

func TestLobbyConcurrentJoinsNeverOverfill(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	ctx := context.Background()

	const capacity = 4
	const contenders = 16
	lobby := f.openLobby(t, creator.ID, capacity)

	ids := make([]int, contenders)
	for i := range ids {
		ids[i] = f.player(fmt.Sprintf("racer%d", i)).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			_, errs[i] = f.svc.Join(ctx, lobby.ID, id, JoinCredentials{})
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrLobbyFull)
		}
	}

	assert.Equal(t, capacity-1, succeeded, "exactly the free slots are won")
	assert.Equal(t, capacity, f.members.count(lobby.ID))

	final, err := f.lobbies.GetByID(ctx, nil, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, final.CurrentPlayers)
	assert.Equal(t, models.LobbyStatusFull, final.Status)
}

func TestLobbySuspendedPlayerCannotJoin(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	banned := f.players.add(&models.Player{Username: "outlaw", Rating: 1000, IsBanned: true})
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)

	_, err := f.svc.Join(ctx, lobby.ID, banned.ID, JoinCredentials{})
	assert.ErrorIs(t, err, ErrPlayerSuspended)

	// Истекший временный бан больше не блокирует.
	past := time.Now().Add(-time.Hour)
	expired := f.players.add(&models.Player{Username: "reformed", Rating: 1000, IsBanned: true, BanExpires: &past})
	_, err = f.svc.Join(ctx, lobby.ID, expired.ID, JoinCredentials{})
	assert.NoError(t, err)
}

func TestLobbyKickRules(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	member := f.player("guest")
	stranger := f.player("stranger")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)
	_, err := f.svc.Join(ctx, lobby.ID, member.ID, JoinCredentials{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Kick(ctx, lobby.ID, member.ID, creator.ID), ErrNotLobbyCreator)
	assert.ErrorIs(t, f.svc.Kick(ctx, lobby.ID, creator.ID, creator.ID), ErrForbiddenOperation)
	assert.ErrorIs(t, f.svc.Kick(ctx, lobby.ID, creator.ID, stranger.ID), ErrNotLobbyMember)

	require.NoError(t, f.svc.Kick(ctx, lobby.ID, creator.ID, member.ID))
	assert.False(t, f.members.isMember(lobby.ID, member.ID))

	after, err := f.lobbies.GetByID(ctx, nil, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentPlayers)
}

func TestLobbyStartAndCancel(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	other := f.player("guest")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)

	assert.ErrorIs(t, f.svc.Start(ctx, lobby.ID, other.ID), ErrNotLobbyCreator)
	require.NoError(t, f.svc.Start(ctx, lobby.ID, creator.ID))

	// Повторный старт — конфликт состояния.
	assert.ErrorIs(t, f.svc.Start(ctx, lobby.ID, creator.ID), ErrLobbyStarted)

	require.NoError(t, f.svc.Cancel(ctx, lobby.ID, creator.ID))

	// Cancel идемпотентен: второй вызов сообщает об отсутствии.
	assert.ErrorIs(t, f.svc.Cancel(ctx, lobby.ID, creator.ID), ErrLobbyNotFound)
	assert.Equal(t, 0, f.members.count(lobby.ID), "teardown removes members")
}

func TestLobbyChat(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	stranger := f.player("stranger")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)

	_, err := f.svc.PostMessage(ctx, lobby.ID, creator.ID, "   ")
	assert.ErrorIs(t, err, ErrMessageEmpty)

	_, err = f.svc.PostMessage(ctx, lobby.ID, stranger.ID, "hi")
	assert.ErrorIs(t, err, ErrNotLobbyMember)

	msg, err := f.svc.PostMessage(ctx, lobby.ID, creator.ID, "gl hf")
	require.NoError(t, err)
	assert.Equal(t, "gl hf", msg.Message)

	list, err := f.svc.ListMessages(ctx, lobby.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, msg.ID, list[0].ID)
}

func TestLobbyNotificationsFired(t *testing.T) {
	f := newLobbyFixture()
	creator := f.player("host")
	joiner := f.player("guest")
	ctx := context.Background()

	lobby := f.openLobby(t, creator.ID, 4)
	_, err := f.svc.Join(ctx, lobby.ID, joiner.ID, JoinCredentials{})
	require.NoError(t, err)
	require.NoError(t, f.svc.Start(ctx, lobby.ID, creator.ID))

	var kinds []string
	for _, e := range f.notifier.all() {
		kinds = append(kinds, e.Event)
	}
	assert.Contains(t, kinds, EventMemberJoined)
	assert.Contains(t, kinds, EventLobbyStarted)
}
