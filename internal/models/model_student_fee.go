package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentFee is a fee obligation owned by the school management app.
// This service only reads it.
type StudentFee struct {
	ID        string          `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	StudentID string          `gorm:"column:student_id;type:varchar(64);not null;index" json:"student_id"`
	FeeType   string          `gorm:"column:fee_type;type:varchar(64)" json:"fee_type"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	DueDate   *time.Time      `gorm:"column:due_date;type:date" json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (StudentFee) TableName() string {
	return "student_fees"
}
