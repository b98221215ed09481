package model

// Record is one character's participation in one fight, flattened out of a
// report. FightID is "<report code>-<fight id>" and is unique across reports.
type Record struct {
	FightID        string  `json:"fightId"`
	Boss           string  `json:"boss"`
	Kill           bool    `json:"kill"`
	Role           string  `json:"role"`
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	BracketPercent float64 `json:"bracketPercent"`
	RankPercent    float64 `json:"rankPercent"`
}

// CharacterScore holds the computed metrics for one character name.
type CharacterScore struct {
	Name       string  `json:"name"`
	Fights     int     `json:"fights"`     // records contributed
	Attendance float64 `json:"attendance"` // percent of distinct fights
	ParseScore float64 `json:"parseScore"` // nearest-rank rankPercent
	IlvlScore  float64 `json:"ilvlScore"`  // nearest-rank bracketPercent
}
