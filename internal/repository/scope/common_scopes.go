package scope

import "gorm.io/gorm"

// NewestFirst orders sessions by creation time, ties broken by id.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Chronological orders messages oldest first. seq breaks created_at ties.
func Chronological(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("seq ASC")
}

func ReverseChronological(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("seq DESC")
}
