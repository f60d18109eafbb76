package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersistence stores each row as a hash at <prefix>session:<sid>
// and indexes session IDs per user in a set at <prefix>user:<uid>.
// Keys carry no expiry; TTL is enforced on read by Expiring.
type RedisPersistence struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPersistence uses client with the given key prefix (default "warden:").
func NewRedisPersistence(client redis.UniversalClient, prefix string) *RedisPersistence {
	if prefix == "" {
		prefix = "warden:"
	}
	return &RedisPersistence{client: client, prefix: prefix}
}

func (p *RedisPersistence) sessionKey(sid string) string { return p.prefix + "session:" + sid }
func (p *RedisPersistence) userKey(uid string) string    { return p.prefix + "user:" + uid }

// Insert writes the row hash and its user index entry atomically.
func (p *RedisPersistence) Insert(ctx context.Context, row Row) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.sessionKey(row.SessionID),
			"id", row.ID,
			"session_id", row.SessionID,
			"user_id", row.UserID,
			"created_at", strconv.FormatInt(row.CreatedAt.UnixNano(), 10),
		)
		pipe.SAdd(ctx, p.userKey(row.UserID), row.SessionID)
		return nil
	})
	return err
}

// FindBy returns rows where field equals value.
func (p *RedisPersistence) FindBy(ctx context.Context, field Field, value string) ([]Row, error) {
	switch field {
	case FieldSessionID:
		row, ok, err := p.load(ctx, value)
		if err != nil || !ok {
			return nil, err
		}
		return []Row{row}, nil
	case FieldUserID:
		sids, err := p.client.SMembers(ctx, p.userKey(value)).Result()
		if err != nil {
			return nil, err
		}
		var out []Row
		for _, sid := range sids {
			row, ok, err := p.load(ctx, sid)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, row)
			}
		}
		return out, nil
	default:
		return nil, ErrUnknownField
	}
}

// Delete removes the row hash and its user index entry.
func (p *RedisPersistence) Delete(ctx context.Context, row Row) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.sessionKey(row.SessionID))
		pipe.SRem(ctx, p.userKey(row.UserID), row.SessionID)
		return nil
	})
	return err
}

func (p *RedisPersistence) load(ctx context.Context, sid string) (Row, bool, error) {
	m, err := p.client.HGetAll(ctx, p.sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, err
	}
	if len(m) == 0 {
		return Row{}, false, nil
	}

	ns, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return Row{}, false, err
	}
	return Row{
		ID:        m["id"],
		SessionID: m["session_id"],
		UserID:    m["user_id"],
		CreatedAt: time.Unix(0, ns).UTC(),
	}, true, nil
}
