package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// UserRepository 内存用户仓储，邮箱唯一
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*user.User
	byEmail map[string]string // email -> id
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository 创建内存用户仓储
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	cp := *u
	r.users[u.ID] = &cp
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if old.Email != u.Email {
		if _, taken := r.byEmail[u.Email]; taken {
			return apperrors.ErrEmailDuplicate
		}
		delete(r.byEmail, old.Email)
		r.byEmail[u.Email] = u.ID
	}
	cp := *u
	cp.CreatedAt = old.CreatedAt
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	return nil
}

// List 按注册时间正序分页
func (r *UserRepository) List(_ context.Context, page, pageSize int) ([]*user.User, int64, error) {
	r.mu.RLock()
	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}
