package data

import (
	"gorm.io/gorm"
)

// Score is a player's standing on the highscore list. Nicknames are the key,
// so two players who pick the same name share a row.
type Score struct {
	Nickname string `gorm:"primaryKey;size:64"`
	Best     int    `gorm:"not null"`
	Last     int    `gorm:"not null"`
}

func (Score) TableName() string { return "scores" }

// RecordScore stores the result of a finished game for nickname. The row is
// created on the first result; later results overwrite Last and raise Best.
func RecordScore(db *gorm.DB, nickname string, score int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing []Score
		if err := tx.Where("nickname = ?", nickname).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) == 0 {
			return tx.Create(&Score{Nickname: nickname, Best: score, Last: score}).Error
		}

		row := existing[0]
		row.Last = score
		if score > row.Best {
			row.Best = score
		}
		return tx.Save(&row).Error
	})
}

// ListScores returns every Score ordered by best score, highest first.
func ListScores(db *gorm.DB) ([]Score, error) {
	var scores []Score
	if err := db.Order("best DESC").Order("nickname").Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}
