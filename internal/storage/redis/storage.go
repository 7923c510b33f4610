package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)
	pipe.ZAdd(ctx, s.keys.playerIndex(), redis.Z{
		Score:  float64(player.CreatedAt.UnixMilli()),
		Member: string(player.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.ZRange(ctx, s.keys.playerIndex(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	playerKeys := make([]string, len(ids))
	for i, id := range ids {
		playerKeys[i] = s.keys.player(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between ZRANGE and MGET
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, err
		}
		players = append(players, &player)
	}

	// Index scores are millisecond precision; settle ties exactly
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.player(id))
	pipe.ZRem(ctx, s.keys.playerIndex(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// A resave may drop players, so clear the previous per-player index entries
	previous, err := s.GetGame(ctx, game.ID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	if previous != nil {
		for _, sc := range previous.Scores {
			pipe.SRem(ctx, s.keys.gamesForPlayer(sc.PlayerID), string(game.ID))
		}
	}
	pipe.Set(ctx, s.keys.game(game.ID), data, 0)
	pipe.ZAdd(ctx, s.keys.gameIndex(), redis.Z{
		Score:  float64(game.CreatedAt.UnixMilli()),
		Member: string(game.ID),
	})
	for _, sc := range game.Scores {
		pipe.SAdd(ctx, s.keys.gamesForPlayer(sc.PlayerID), string(game.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, s.keys.game(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.ZRevRange(ctx, s.keys.gameIndex(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.getGames(ctx, ids)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	for _, sc := range game.Scores {
		pipe.SRem(ctx, s.keys.gamesForPlayer(sc.PlayerID), string(id))
	}
	pipe.Del(ctx, s.keys.game(id))
	pipe.ZRem(ctx, s.keys.gameIndex(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Score operations

func (s *Storage) ListScoresForPlayer(ctx context.Context, id model.PlayerID) ([]model.ReconciledScore, error) {
	gameIDs, err := s.client.SMembers(ctx, s.keys.gamesForPlayer(id)).Result()
	if err != nil {
		return nil, err
	}

	games, err := s.getGames(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	scores := make([]model.ReconciledScore, 0, len(games))
	for _, g := range games {
		if sc := g.ScoreFor(id); sc != nil {
			scores = append(scores, *sc)
		}
	}
	return scores, nil
}

// getGames fetches games by ID with one MGET, skipping any that no longer exist
func (s *Storage) getGames(ctx context.Context, ids []string) ([]*model.Game, error) {
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	gameKeys := make([]string, len(ids))
	for i, id := range ids {
		gameKeys[i] = s.keys.game(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, gameKeys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}

	storage.SortGames(games)
	return games, nil
}
