package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"corkboard/internal/domain"
)

const DefaultBoardKey = "corkboard"

// BoardRepository implements domain.BoardRepository over a KV.
type BoardRepository struct {
	kv  KV
	key string
}

func NewBoardRepository(kv KV, key string) *BoardRepository {
	if key == "" {
		key = DefaultBoardKey
	}
	return &BoardRepository{kv: kv, key: key}
}

func (r *BoardRepository) Key() string { return r.key }

// Load reads the board. A missing key is an empty board; a value that does
// not decode is reported as domain.ErrMalformedState.
func (r *BoardRepository) Load(ctx context.Context) (domain.BoardState, error) {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return emptyBoard(), nil
	}
	if err != nil {
		return domain.BoardState{}, fmt.Errorf("load board: %w", err)
	}
	return DecodeBoard(data)
}

func (r *BoardRepository) Save(ctx context.Context, state domain.BoardState) error {
	data, err := EncodeBoard(state)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// EncodeBoard produces the persisted layout. Empty collections are written
// as [] so other readers never see null.
func EncodeBoard(state domain.BoardState) ([]byte, error) {
	if state.Items == nil {
		state.Items = []domain.Item{}
	}
	if state.Connections == nil {
		state.Connections = []domain.Connection{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return data, nil
}

func DecodeBoard(data []byte) (domain.BoardState, error) {
	var state domain.BoardState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.BoardState{}, fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
	}
	if state.Items == nil {
		state.Items = []domain.Item{}
	}
	if state.Connections == nil {
		state.Connections = []domain.Connection{}
	}
	return state, nil
}

func emptyBoard() domain.BoardState {
	return domain.BoardState{Items: []domain.Item{}, Connections: []domain.Connection{}}
}
