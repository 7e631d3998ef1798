package models

// OrderCounter hands out per-day order number sequences. Day is the YYYYMMDD
// date part of the order number; LastSeq is incremented atomically inside the
// checkout transaction.
type OrderCounter struct {
	Day     string `gorm:"column:day;primaryKey"`
	LastSeq int    `gorm:"column:last_seq;not null;default:0"`
}
