package db

import "time"

type (
	// Offender is a persisted offense-ledger entry.
	Offender struct {
		UserID         int64     `db:"user_id"`
		FirstName      string    `db:"first_name"`
		LastName       string    `db:"last_name"`
		UserName       string    `db:"username"`
		OffenseCount   int       `db:"offense_count"`
		Excommunicated bool      `db:"excommunicated"`
		ExcomCount     int       `db:"excom_count"`
		ReliefTime     time.Time `db:"relief_time"`
		UpdatedAt      time.Time `db:"updated_at"`
	}

	// ExcommunicationEvent is one audit record per excommunication.
	ExcommunicationEvent struct {
		ID         string    `db:"id"`
		UserID     int64     `db:"user_id"`
		ExcomCount int       `db:"excom_count"`
		ReliefTime time.Time `db:"relief_time"`
		CreatedAt  time.Time `db:"created_at"`
	}
)
