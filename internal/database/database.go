package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/mattn/go-sqlite3"
)

// Service wraps a sql.DB holding round history. The driver is chosen by
// TRACTOR_DB_DRIVER ("sqlite3" or "pgx") and the DSN by TRACTOR_DB_DSN;
// with nothing set it falls back to a local sqlite file.
type Service struct {
	db        *sql.DB
	m         *sync.Mutex
	tableName string
	driver    string
}

var tableName = "tractor_rounds"

func New() *Service {
	driver := os.Getenv("TRACTOR_DB_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := os.Getenv("TRACTOR_DB_DSN")
	if dsn == "" {
		dsn = "./tractor.db"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		panic(err)
	}

	sqlStmt := `
	create table if not exists ` + tableName + ` (
		id text not null primary key,
		game_id text,
		created_at text,
		player1 text,
		player2 text,
		player3 text,
		player4 text,
		defender_team integer,
		attacker_team integer,
		attacker_points integer,
		kitty_bonus integer,
		level_delta integer,
		advancing_team integer,
		team0_level text,
		team1_level text,
		next_banker_seat integer
	);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		panic(err)
	}

	return &Service{
		db:        db,
		m:         &sync.Mutex{},
		tableName: tableName,
		driver:    driver,
	}
}

func (s *Service) Close() error {
	return s.db.Close()
}

// placeholders renders n bind markers in the driver's dialect: "?" for
// sqlite3, "$1".."$n" for pgx.
func (s *Service) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if s.driver == "pgx" {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

func (s *Service) InsertRound(rec RoundRecord) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.Exec("INSERT INTO "+s.tableName+
		" (id, game_id, created_at, player1, player2, player3, player4, defender_team, attacker_team, attacker_points, kitty_bonus, level_delta, advancing_team, team0_level, team1_level, next_banker_seat) VALUES ("+
		s.placeholders(16)+")",
		rec.ID,
		rec.GameID,
		rec.CreatedAt,
		rec.Players[0],
		rec.Players[1],
		rec.Players[2],
		rec.Players[3],
		rec.DefenderTeam,
		rec.AttackerTeam,
		rec.AttackerPoints,
		rec.KittyBonus,
		rec.LevelDelta,
		rec.AdvancingTeam,
		rec.Team0Level,
		rec.Team1Level,
		rec.NextBankerSeat)

	return err
}

func (s *Service) GetAll() ([]RoundRecord, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query("SELECT * FROM " + s.tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}

func (s *Service) GetByGame(gameID string) ([]RoundRecord, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query("SELECT * FROM "+s.tableName+" WHERE game_id = "+s.placeholders(1), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := scanRounds(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

func (s *Service) GetByPlayer(playerName string) ([]RoundRecord, error) {
	s.m.Lock()
	defer s.m.Unlock()
	marks := strings.Split(s.placeholders(4), ", ")
	rows, err := s.db.Query("SELECT * FROM "+s.tableName+
		" WHERE player1 = "+marks[0]+" OR player2 = "+marks[1]+" OR player3 = "+marks[2]+" OR player4 = "+marks[3],
		playerName,
		playerName,
		playerName,
		playerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := scanRounds(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

func scanRounds(rows *sql.Rows) ([]RoundRecord, error) {
	var results []RoundRecord
	for rows.Next() {
		var rec RoundRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.GameID,
			&rec.CreatedAt,
			&rec.Players[0],
			&rec.Players[1],
			&rec.Players[2],
			&rec.Players[3],
			&rec.DefenderTeam,
			&rec.AttackerTeam,
			&rec.AttackerPoints,
			&rec.KittyBonus,
			&rec.LevelDelta,
			&rec.AdvancingTeam,
			&rec.Team0Level,
			&rec.Team1Level,
			&rec.NextBankerSeat); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
