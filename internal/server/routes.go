package server

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"tractor-game/internal/database"
)

func HandleRoutes(db *database.Service) {
	http.HandleFunc("/api/rounds", func(w http.ResponseWriter, r *http.Request) {
		GetRoundsHandler(db, w, r)
	})
	log.Println("Registered route: /api/rounds")

	http.HandleFunc("/api/rounds/game/{id}", func(w http.ResponseWriter, r *http.Request) {
		GetRoundsByGameHandler(db, w, r)
	})
	log.Println("Registered route: /api/rounds/game/{id}")

	http.HandleFunc("/api/rounds/player/{name}", func(w http.ResponseWriter, r *http.Request) {
		GetRoundsByPlayerHandler(db, w, r)
	})
	log.Println("Registered route: /api/rounds/player/{name}")
}

func GetRoundsHandler(db *database.Service, w http.ResponseWriter, r *http.Request) {
	results, err := db.GetAll()
	if err != nil {
		http.Error(w, "Failed to fetch rounds", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func GetRoundsByGameHandler(db *database.Service, w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		http.Error(w, "Game id is required", http.StatusBadRequest)
		return
	}

	results, err := db.GetByGame(gameID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "No rounds found for game", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch rounds", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func GetRoundsByPlayerHandler(db *database.Service, w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("name")
	if player == "" {
		http.Error(w, "Player name is required", http.StatusBadRequest)
		return
	}

	results, err := db.GetByPlayer(player)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "No rounds found for player", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch rounds", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
