package models

import (
	"gorm.io/gorm"
)

// WatchlistEntry is one coin tracked by one user. The (UserID, CoinSymbol)
// pair is kept unique by a check at creation time, not by a DB constraint.
type WatchlistEntry struct {
	gorm.Model
	UserID     uint   `gorm:"index" json:"user"`
	CoinName   string `json:"coinName"`
	CoinSymbol string `json:"coinSymbol"`
}
