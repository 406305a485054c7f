package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/aanand-mishra/channels-api/internal/types"
)

// CreateStudent inserts a new student row. A concurrent signup that
// slips past the handler's uniqueness checks surfaces here as
// storage.ErrAlreadyExists.
func (s *Storage) CreateStudent(ctx context.Context, in types.StudentCreate, passwordHash string) (types.Student, error) {
	rec := Student{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Matricule:    in.Matricule,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return types.Student{}, wrap("CreateStudent", err)
	}
	return rec.toType(), nil
}

// GetStudentByID returns storage.ErrNotFound for an unknown id.
func (s *Storage) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var rec Student
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return types.Student{}, wrap("GetStudentByID", err)
	}
	return rec.toType(), nil
}

// GetStudentExtra returns the student with the channels they are
// subscribed to, ordered by channel id.
func (s *Storage) GetStudentExtra(ctx context.Context, id int64) (types.StudentExtra, error) {
	db := s.db.WithContext(ctx)

	var rec Student
	if err := db.First(&rec, id).Error; err != nil {
		return types.StudentExtra{}, wrap("GetStudentExtra", err)
	}

	var channels []Channel
	err := db.
		Joins("JOIN subscriptions ON subscriptions.channel_id = channels.id").
		Where("subscriptions.student_id = ?", id).
		Order("channels.id").
		Find(&channels).Error
	if err != nil {
		return types.StudentExtra{}, wrap("GetStudentExtra: channels", err)
	}

	out := types.StudentExtra{
		Student:  rec.toType(),
		Channels: make([]types.Channel, 0, len(channels)),
	}
	for _, c := range channels {
		out.Channels = append(out.Channels, c.toType())
	}
	return out, nil
}

// GetStudentCredentials looks a student up by email and also returns
// the stored password hash, for token issuing only.
func (s *Storage) GetStudentCredentials(ctx context.Context, email string) (types.Student, string, error) {
	var rec Student
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error; err != nil {
		return types.Student{}, "", wrap("GetStudentCredentials", err)
	}
	return rec.toType(), rec.PasswordHash, nil
}

// GetStudents returns a page ordered by id. An empty page is an empty,
// non-nil slice so it encodes as [].
func (s *Storage) GetStudents(ctx context.Context, skip, limit int) ([]types.Student, error) {
	skip, limit = clampPage(skip, limit)

	var recs []Student
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, wrap("GetStudents", err)
	}

	students := make([]types.Student, 0, len(recs))
	for _, r := range recs {
		students = append(students, r.toType())
	}
	return students, nil
}

// EmailTaken reports whether a student other than excludeID uses email.
// Pass 0 to check against every student.
func (s *Storage) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return s.studentFieldTaken(ctx, "email", email, excludeID)
}

// MatriculeTaken is EmailTaken for the matricule column.
func (s *Storage) MatriculeTaken(ctx context.Context, matricule string, excludeID int64) (bool, error) {
	return s.studentFieldTaken(ctx, "matricule", matricule, excludeID)
}

// column is always one of our own literals, never user input.
func (s *Storage) studentFieldTaken(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	q := s.db.WithContext(ctx).Model(&Student{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, wrap("studentFieldTaken: "+column, err)
	}
	return n > 0, nil
}

// UpdateStudent applies the non-nil fields of in. An empty passwordHash
// leaves the stored hash as it is.
func (s *Storage) UpdateStudent(ctx context.Context, id int64, in types.StudentUpdate, passwordHash string) (types.Student, error) {
	db := s.db.WithContext(ctx)

	var rec Student
	if err := db.First(&rec, id).Error; err != nil {
		return types.Student{}, wrap("UpdateStudent", err)
	}

	changes := map[string]interface{}{}
	if in.FirstName != nil {
		changes["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		changes["last_name"] = *in.LastName
	}
	if in.Email != nil {
		changes["email"] = *in.Email
	}
	if in.Matricule != nil {
		changes["matricule"] = *in.Matricule
	}
	if passwordHash != "" {
		changes["password_hash"] = passwordHash
	}

	if len(changes) > 0 {
		if err := db.Model(&rec).Updates(changes).Error; err != nil {
			return types.Student{}, wrap("UpdateStudent", err)
		}
	}

	// Re-fetch so the caller sees exactly what is stored.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudent removes the student's subscriptions and then the
// student inside one transaction.
func (s *Storage) DeleteStudent(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&Subscription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Student{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap("DeleteStudent", err)
}
