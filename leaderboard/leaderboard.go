// Package leaderboard держит рейтинговую таблицу в Redis sorted set.
// Postgres остаётся источником истины; кеш лишь ускоряет чтение топа и
// переживает промахи деградацией в SQL.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
)

const ratingKey = "ladder:rating"

// Entry — строка таблицы лидеров.
type Entry struct {
	Rank   int            `json:"rank"`
	Player *models.Player `json:"player"`
}

type Leaderboard struct {
	rdb        *redis.Client
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

// New создаёт таблицу лидеров. rdb может быть nil — тогда все чтения
// идут напрямую в Postgres, а Record становится no-op.
func New(rdb *redis.Client, playerRepo repositories.PlayerRepository, logger *slog.Logger) *Leaderboard {
	return &Leaderboard{rdb: rdb, playerRepo: playerRepo, logger: logger}
}

// Connect открывает Redis-клиент и проверяет соединение.
func Connect(addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Record обновляет рейтинг игрока в sorted set. Best-effort: отказ
// Redis логируется и не останавливает вызвавшую операцию.
func (l *Leaderboard) Record(ctx context.Context, playerID, rating int) {
	if l.rdb == nil {
		return
	}
	member := strconv.Itoa(playerID)
	if err := l.rdb.ZAdd(ctx, ratingKey, redis.Z{Score: float64(rating), Member: member}).Err(); err != nil {
		l.logger.Warn("leaderboard record failed", "player_id", playerID, "error", err)
	}
}

// Remove убирает игрока из таблицы (например, после перманентного бана).
func (l *Leaderboard) Remove(ctx context.Context, playerID int) {
	if l.rdb == nil {
		return
	}
	if err := l.rdb.ZRem(ctx, ratingKey, strconv.Itoa(playerID)).Err(); err != nil {
		l.logger.Warn("leaderboard remove failed", "player_id", playerID, "error", err)
	}
}

// Top возвращает первые limit строк начиная с offset. Redis-путь
// гидрирует игроков по одному; пустой или недоступный кеш откатывается
// на ListTopByRating.
func (l *Leaderboard) Top(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	if l.rdb != nil {
		entries, err := l.topFromRedis(ctx, limit, offset)
		if err != nil {
			l.logger.Warn("leaderboard cache read failed, falling back to sql", "error", err)
		} else if len(entries) > 0 {
			return entries, nil
		}
	}
	return l.topFromSQL(ctx, limit, offset)
}

// Rank — позиция игрока (с единицы). Второй результат false, если
// игрока нет в кеше или кеш отключен.
func (l *Leaderboard) Rank(ctx context.Context, playerID int) (int, bool) {
	if l.rdb == nil {
		return 0, false
	}
	rank, err := l.rdb.ZRevRank(ctx, ratingKey, strconv.Itoa(playerID)).Result()
	if err != nil {
		return 0, false
	}
	return int(rank) + 1, true
}

func (l *Leaderboard) topFromRedis(ctx context.Context, limit, offset int) ([]*Entry, error) {
	zs, err := l.rdb.ZRevRangeWithScores(ctx, ratingKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(zs))
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		player, err := l.playerRepo.GetByID(ctx, nil, id)
		if err != nil {
			// Запись кеша пережила игрока; чистим и идём дальше.
			l.Remove(ctx, id)
			continue
		}
		entries = append(entries, &Entry{Rank: offset + i + 1, Player: player})
	}
	return entries, nil
}

func (l *Leaderboard) topFromSQL(ctx context.Context, limit, offset int) ([]*Entry, error) {
	players, err := l.playerRepo.ListTopByRating(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list top players: %w", err)
	}
	entries := make([]*Entry, 0, len(players))
	for i, p := range players {
		entries = append(entries, &Entry{Rank: offset + i + 1, Player: p})
	}
	return entries, nil
}

// Warm пересобирает sorted set из Postgres. Вызывается на старте, чтобы
// таблица была консистентна после простоя кеша.
func (l *Leaderboard) Warm(ctx context.Context) error {
	if l.rdb == nil {
		return nil
	}
	const page = 500
	for offset := 0; ; offset += page {
		players, err := l.playerRepo.ListTopByRating(ctx, page, offset)
		if err != nil {
			return fmt.Errorf("failed to page players for warmup: %w", err)
		}
		if len(players) == 0 {
			return nil
		}
		zs := make([]redis.Z, 0, len(players))
		for _, p := range players {
			zs = append(zs, redis.Z{Score: float64(p.Rating), Member: strconv.Itoa(p.ID)})
		}
		if err := l.rdb.ZAdd(ctx, ratingKey, zs...).Err(); err != nil {
			return fmt.Errorf("failed to warm leaderboard: %w", err)
		}
		if len(players) < page {
			return nil
		}
	}
}
