package database

// RoundRecord is one persisted round result. Team levels are stored as rank
// strings ("2".."A") so the history reads the way players talk about it.
type RoundRecord struct {
	ID             string    `json:"id"`
	GameID         string    `json:"game_id"`
	CreatedAt      string    `json:"created_at"`
	Players        [4]string `json:"players"`
	DefenderTeam   int       `json:"defender_team"`
	AttackerTeam   int       `json:"attacker_team"`
	AttackerPoints int       `json:"attacker_points"`
	KittyBonus     int       `json:"kitty_bonus"`
	LevelDelta     int       `json:"level_delta"`
	AdvancingTeam  int       `json:"advancing_team"`
	Team0Level     string    `json:"team0_level"`
	Team1Level     string    `json:"team1_level"`
	NextBankerSeat int       `json:"next_banker_seat"`
}
