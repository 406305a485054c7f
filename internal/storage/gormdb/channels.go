package gormdb

import (
	"context"

	"github.com/aanand-mishra/channels-api/internal/types"
)

// CreateChannel inserts a channel. A duplicate name is storage.ErrAlreadyExists.
func (s *Storage) CreateChannel(ctx context.Context, in types.ChannelCreate) (types.Channel, error) {
	rec := Channel{Name: in.Name, Description: in.Description}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return types.Channel{}, wrap("CreateChannel", err)
	}
	return rec.toType(), nil
}

// GetChannelByID returns storage.ErrNotFound for an unknown id.
func (s *Storage) GetChannelByID(ctx context.Context, id int64) (types.Channel, error) {
	var rec Channel
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return types.Channel{}, wrap("GetChannelByID", err)
	}
	return rec.toType(), nil
}

// GetChannels returns a page of channels ordered by id.
func (s *Storage) GetChannels(ctx context.Context, skip, limit int) ([]types.Channel, error) {
	skip, limit = clampPage(skip, limit)

	var recs []Channel
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, wrap("GetChannels", err)
	}

	channels := make([]types.Channel, 0, len(recs))
	for _, r := range recs {
		channels = append(channels, r.toType())
	}
	return channels, nil
}

// ChannelNameTaken reports whether a channel already uses name.
func (s *Storage) ChannelNameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Channel{}).Where("name = ?", name).Count(&n).Error
	if err != nil {
		return false, wrap("ChannelNameTaken", err)
	}
	return n > 0, nil
}
