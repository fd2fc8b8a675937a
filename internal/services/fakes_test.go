// file: internal/services/fakes_test.go
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"kudospot/internal/cache"
	"kudospot/internal/models"
	"kudospot/internal/repositories"
)

// fakeTxRunner runs the transaction body directly; the fake repos
// ignore the tx argument.
type fakeTxRunner struct{}

func (fakeTxRunner) RunTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

// ===============================
// FAKE USER REPOSITORY
// ===============================

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	badges map[int64][]models.Badge
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]*models.User),
		badges: make(map[int64][]models.Badge),
		nextID: 1,
	}
}

func (r *fakeUserRepo) addUser(name, department string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{
		ID:         r.nextID,
		Email:      strings.ToLower(name) + "@example.com",
		Name:       name,
		Department: department,
		Level:      1,
	}
	r.users[u.ID] = u
	r.nextID++
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return &pq.Error{Code: "23505", Constraint: "users_email_key"}
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Name = user.Name
	stored.Department = user.Department
	stored.Position = user.Position
	stored.Bio = user.Bio
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, userID int64, url, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.AvatarURL = &url
	stored.AvatarPublicID = &publicID
	return nil
}

func (r *fakeUserRepo) GetBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Badge{}, r.badges[userID]...), nil
}

func (r *fakeUserRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.User, error) {
	return r.GetByID(ctx, userID)
}

func (r *fakeUserRepo) GetBadgesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]models.Badge, error) {
	return r.GetBadges(ctx, userID)
}

func (r *fakeUserRepo) ApplyProgressionTx(ctx context.Context, tx *sql.Tx, userID int64, level int, newBadges []models.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Level = level
	for _, badge := range newBadges {
		if !models.HasBadge(r.badges[userID], badge.Name) {
			badge.UserID = userID
			r.badges[userID] = append(r.badges[userID], badge)
		}
	}
	return nil
}

// ===============================
// FAKE KUDO REPOSITORY
// ===============================

type fakeKudoRepo struct {
	mu     sync.Mutex
	users  *fakeUserRepo
	kudos  map[int64]*models.Kudo
	likes  map[int64]map[int64]bool
	nextID int64
}

func newFakeKudoRepo(users *fakeUserRepo) *fakeKudoRepo {
	return &fakeKudoRepo{
		users:  users,
		kudos:  make(map[int64]*models.Kudo),
		likes:  make(map[int64]map[int64]bool),
		nextID: 1,
	}
}

func (r *fakeKudoRepo) CreateTx(ctx context.Context, tx *sql.Tx, kudo *models.Kudo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kudo.ID = r.nextID
	r.nextID++
	if kudo.CreatedAt.IsZero() {
		kudo.CreatedAt = time.Now()
	}
	copied := *kudo
	r.kudos[kudo.ID] = &copied
	return nil
}

func (r *fakeKudoRepo) view(k *models.Kudo) *models.Kudo {
	copied := *k
	copied.LikedBy = []int64{}
	for uid := range r.likes[k.ID] {
		copied.LikedBy = append(copied.LikedBy, uid)
	}
	sort.Slice(copied.LikedBy, func(i, j int) bool { return copied.LikedBy[i] < copied.LikedBy[j] })
	if from, ok := r.users.users[k.FromUserID]; ok {
		copied.From = from.Ref()
	}
	if to, ok := r.users.users[k.ToUserID]; ok {
		copied.To = to.Ref()
	}
	return &copied
}

func (r *fakeKudoRepo) GetByID(ctx context.Context, id int64) (*models.Kudo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.kudos[id]
	if !ok {
		return nil, nil
	}
	return r.view(k), nil
}

func (r *fakeKudoRepo) ListAll(ctx context.Context) ([]*models.Kudo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Kudo, 0, len(r.kudos))
	for _, k := range r.kudos {
		out = append(out, r.view(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeKudoRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Kudo, error) {
	all, _ := r.ListAll(ctx)
	out := make([]*models.Kudo, 0)
	for _, k := range all {
		if k.FromUserID == userID || k.ToUserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKudoRepo) CountReceived(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, k := range r.kudos {
		if k.ToUserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeKudoRepo) CountReceivedTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	return r.CountReceived(ctx, userID)
}

func (r *fakeKudoRepo) CountGiven(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, k := range r.kudos {
		if k.FromUserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeKudoRepo) CategoryBreakdown(ctx context.Context, userID int64) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for _, k := range r.kudos {
		if k.ToUserID == userID {
			out[k.Category]++
		}
	}
	return out, nil
}

func (r *fakeKudoRepo) ToggleLike(ctx context.Context, kudoID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kudos[kudoID]; !ok {
		return false, sql.ErrNoRows
	}
	if r.likes[kudoID] == nil {
		r.likes[kudoID] = make(map[int64]bool)
	}
	if r.likes[kudoID][userID] {
		delete(r.likes[kudoID], userID)
		return false, nil
	}
	r.likes[kudoID][userID] = true
	return true, nil
}

func (r *fakeKudoRepo) Rank(ctx context.Context, q repositories.RankingQuery) ([]*models.LeaderboardEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[int64]int64)
	for _, k := range r.kudos {
		if q.Since != nil && k.CreatedAt.Before(*q.Since) {
			continue
		}
		if q.FromUserID != nil && k.FromUserID != *q.FromUserID {
			continue
		}
		switch q.GroupKey {
		case repositories.GroupBySender:
			counts[k.FromUserID]++
		default:
			counts[k.ToUserID]++
		}
	}

	entries := make([]*models.LeaderboardEntry, 0, len(counts))
	for uid, score := range counts {
		entry := &models.LeaderboardEntry{UserID: uid, Score: score}
		if u, ok := r.users.users[uid]; ok {
			entry.Name = u.Name
			entry.Department = u.Department
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

// ===============================
// FAKE CACHE
// ===============================

// fakeCache stores JSON payloads in memory and records invalidations.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}

func (c *fakeCache) Health(ctx context.Context) error { return nil }
func (c *fakeCache) Stats() *cache.Stats              { return &cache.Stats{} }
func (c *fakeCache) Close() error                     { return nil }
