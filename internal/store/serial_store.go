package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SerialStore struct{ db *gorm.DB }

func (s *Store) Serials() *SerialStore { return &SerialStore{db: s.DB} }

// Next atomically bumps the counter for (prefix, year) and returns the new value.
// It commits on its own, so a number handed out is never handed out again even if
// the caller's transaction later rolls back.
func (s *SerialStore) Next(ctx context.Context, prefix string, year int) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.SerialCounter{}).
			Where("prefix = ? AND year = ?", prefix, year).
			UpdateColumn("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// first number of the year: continue after any serials issued before the counter existed
			seed, err := highestSequence(tx, prefix, year)
			if err != nil {
				return err
			}
			counter := domain.SerialCounter{Prefix: prefix, Year: year, Value: seed + 1}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "prefix"}, {Name: "year"}},
				DoUpdates: clause.Set{{Column: clause.Column{Name: "value"}, Value: gorm.Expr("serial_counters.value + 1")}},
			}).Create(&counter).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&domain.SerialCounter{}).
			Select("value").
			Where("prefix = ? AND year = ?", prefix, year).
			Scan(&value).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return value, nil
}

func highestSequence(tx *gorm.DB, prefix string, year int) (int64, error) {
	head := fmt.Sprintf("%s-%d-", prefix, year)
	var serials []string
	err := tx.Model(&domain.Defect{}).
		Where(`serial_number LIKE ? ESCAPE '\'`, escapeLike(head)+"%").
		Pluck("serial_number", &serials).Error
	if err != nil {
		return 0, err
	}
	var max int64
	for _, s := range serials {
		n, err := strconv.ParseInt(strings.TrimPrefix(s, head), 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards in s so it matches literally.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
