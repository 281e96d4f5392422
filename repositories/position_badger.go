package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"
	"tpa-lab/domain"

	"github.com/dgraph-io/badger/v4"
)

const (
	metadataKey    = "map:metadata"
	positionPrefix = "pos:"
)

type BadgerPositionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerPositionRepository(db *badger.DB, log *slog.Logger) *BadgerPositionRepository {
	return &BadgerPositionRepository{db: db, log: log}
}

// positionKey is "pos:{actor_id}" with the id zero padded so keys sort numerically.
func positionKey(id domain.ActorID) []byte {
	return []byte(fmt.Sprintf("%s%020d", positionPrefix, uint64(id)))
}

func (r *BadgerPositionRepository) UpsertMetadata(meta MapMetadata) error {
	bytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metadataKey), bytes)
	})
}

// UpsertPlayers writes every player in a single transaction.
func (r *BadgerPositionRepository) UpsertPlayers(players []PlayerPosition) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for _, p := range players {
			p.Online = true
			bytes, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := txn.Set(positionKey(p.ActorID), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BadgerPositionRepository) MarkOffline(id domain.ActorID, at time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		p, err := getPosition(txn, id)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		p.Online = false
		p.LastSeen = at.UTC()
		return setPosition(txn, p)
	})
}

func (r *BadgerPositionRepository) MarkStale(before time.Time) (int, error) {
	changed := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		players, err := scanPositions(txn)
		if err != nil {
			return err
		}
		for _, p := range players {
			if !p.Online || !p.LastSeen.Before(before) {
				continue
			}
			p.Online = false
			if err := setPosition(txn, p); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}

func (r *BadgerPositionRepository) Snapshot() (MapMetadata, []PlayerPosition, error) {
	var meta MapMetadata
	var players []PlayerPosition
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metadataKey))
		switch {
		case stderrors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &meta) }); err != nil {
				return err
			}
		}
		players, err = scanPositions(txn)
		return err
	})
	if err != nil {
		return MapMetadata{}, nil, err
	}
	sortForMap(players)
	return meta, players, nil
}

func (r *BadgerPositionRepository) Close() error {
	return r.db.Close()
}

func getPosition(txn *badger.Txn, id domain.ActorID) (PlayerPosition, error) {
	var p PlayerPosition
	item, err := txn.Get(positionKey(id))
	if err != nil {
		return p, err
	}
	err = item.Value(func(val []byte) error { return json.Unmarshal(val, &p) })
	return p, err
}

func setPosition(txn *badger.Txn, p PlayerPosition) error {
	bytes, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return txn.Set(positionKey(p.ActorID), bytes)
}

// scanPositions walks the "pos:" prefix. Values are copied out of the iterator.
func scanPositions(txn *badger.Txn) ([]PlayerPosition, error) {
	var raw [][]byte
	prefix := []byte(positionPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		raw = append(raw, val)
	}

	players := make([]PlayerPosition, 0, len(raw))
	for _, b := range raw {
		var p PlayerPosition
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}
