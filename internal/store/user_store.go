package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

// Upsert creates the user or refreshes its credentials and role by username.
func (u *UserStore) Upsert(ctx context.Context, usr *domain.User) error {
	return translate(u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "role", "is_active", "updated_at"}),
		}).
		Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := u.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// UpdateProfile applies cols to one user and reports whether the row exists.
func (u *UserStore) UpdateProfile(ctx context.Context, id int64, cols map[string]any) (bool, error) {
	res := u.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
