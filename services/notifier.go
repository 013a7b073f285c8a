package services

// LobbyNotifier рассылает события лобби подключенным наблюдателям
// (websocket-хаб). Рассылка best-effort и не влияет на результат
// операции; nil-реализация допустима.
type LobbyNotifier interface {
	NotifyLobby(lobbyID int, event string, payload interface{})
}

// События, публикуемые движком.
const (
	EventMemberJoined       = "MEMBER_JOINED"
	EventMemberLeft         = "MEMBER_LEFT"
	EventMemberKicked       = "MEMBER_KICKED"
	EventLobbyStarted       = "LOBBY_STARTED"
	EventLobbyCancelled     = "LOBBY_CANCELLED"
	EventLobbyFinished      = "LOBBY_FINISHED"
	EventSubmissionCreated  = "SUBMISSION_CREATED"
	EventSubmissionReviewed = "SUBMISSION_REVIEWED"
	EventChatMessage        = "CHAT_MESSAGE"
)
