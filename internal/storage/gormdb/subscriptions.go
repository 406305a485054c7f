package gormdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aanand-mishra/channels-api/internal/types"
)

// Subscribe inserts the (channel, student) pair. A second insert of the
// same pair violates the composite primary key and is reported as
// storage.ErrAlreadyExists.
func (s *Storage) Subscribe(ctx context.Context, channelID, studentID int64) (types.Subscription, error) {
	rec := Subscription{ChannelID: channelID, StudentID: studentID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return types.Subscription{}, wrap("Subscribe", err)
	}
	return rec.toType(), nil
}

// GetSubscription returns storage.ErrNotFound when the pair does not exist.
func (s *Storage) GetSubscription(ctx context.Context, channelID, studentID int64) (types.Subscription, error) {
	var rec Subscription
	err := s.db.WithContext(ctx).
		Where("channel_id = ? AND student_id = ?", channelID, studentID).
		First(&rec).Error
	if err != nil {
		return types.Subscription{}, wrap("GetSubscription", err)
	}
	return rec.toType(), nil
}

// ListSubscriptions returns subscriptions with their channel and student
// preloaded:
//
//   - both ids set   → the single matching pair, if any
//   - one id set     → every subscription for that channel or student
//   - neither set    → one page of all subscriptions
func (s *Storage) ListSubscriptions(ctx context.Context, filter types.SubscriptionFilter) ([]types.SubscriptionExtra, error) {
	q := s.db.WithContext(ctx).
		Preload("Channel").
		Preload("Student").
		Order("channel_id").
		Order("student_id")

	q = applySubscriptionFilter(q, filter)

	var recs []Subscription
	if err := q.Find(&recs).Error; err != nil {
		return nil, wrap("ListSubscriptions", err)
	}

	subs := make([]types.SubscriptionExtra, 0, len(recs))
	for _, r := range recs {
		subs = append(subs, r.toExtra())
	}
	return subs, nil
}

func applySubscriptionFilter(q *gorm.DB, filter types.SubscriptionFilter) *gorm.DB {
	if filter.ChannelID != nil {
		q = q.Where("channel_id = ?", *filter.ChannelID)
	}
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.ChannelID == nil && filter.StudentID == nil {
		skip, limit := clampPage(filter.Skip, filter.Limit)
		q = q.Offset(skip).Limit(limit)
	}
	return q
}

// Unsubscribe deletes the pair, or returns storage.ErrNotFound when
// there was nothing to delete.
func (s *Storage) Unsubscribe(ctx context.Context, channelID, studentID int64) error {
	res := s.db.WithContext(ctx).
		Where("channel_id = ? AND student_id = ?", channelID, studentID).
		Delete(&Subscription{})
	if res.Error != nil {
		return wrap("Unsubscribe", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("Unsubscribe", gorm.ErrRecordNotFound)
	}
	return nil
}
