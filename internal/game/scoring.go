package game

import (
	"tractor-game/internal/protocol"
	"tractor-game/internal/rules"
	"tractor-game/internal/shared"
)

// RoundOutcome is the tier a round lands in, judged by attacker points.
type RoundOutcome struct {
	LevelDelta       int
	AttackerAdvances bool
	BankerSwaps      bool
}

// roundOutcome maps attacker points onto the eight scoring tiers. Below 120
// the defenders keep or lose only the banker role; from 120 up the attackers
// advance and take over.
func roundOutcome(attackerPoints int) RoundOutcome {
	switch {
	case attackerPoints == 0:
		return RoundOutcome{LevelDelta: 3}
	case attackerPoints < 40:
		return RoundOutcome{LevelDelta: 2}
	case attackerPoints < 80:
		return RoundOutcome{LevelDelta: 1}
	case attackerPoints < 120:
		return RoundOutcome{BankerSwaps: true}
	case attackerPoints < 160:
		return RoundOutcome{LevelDelta: 1, AttackerAdvances: true, BankerSwaps: true}
	case attackerPoints < 200:
		return RoundOutcome{LevelDelta: 2, AttackerAdvances: true, BankerSwaps: true}
	default:
		return RoundOutcome{LevelDelta: 3, AttackerAdvances: true, BankerSwaps: true}
	}
}

// kittyMultiplier is the kou di factor: 2 doubled once per pair unit of the
// last trick's lead.
func kittyMultiplier(lead rules.Pattern) int {
	return 2 << lead.PairUnits()
}

// finishRound splits captured points, applies the kou di kitty bonus, grades
// the outcome tier and settles levels and banker succession.
func (e *Engine) finishRound() {
	defender := TeamOf(e.BankerSeat)
	attacker := 1 - defender
	last := e.History[len(e.History)-1]

	kittyBonus := 0
	if TeamOf(last.WinnerSeat) == attacker {
		mult := kittyMultiplier(last.LeadPattern)
		steps := make([]protocol.KittyStep, 0, len(e.Kitty))
		cumulative := 0
		for _, c := range e.Kitty {
			cumulative += c.Points() * mult
			steps = append(steps, protocol.KittyStep{CardID: c.ID, Points: c.Points(), Cumulative: cumulative})
		}
		kittyBonus = cumulative
		e.Points[attacker] += kittyBonus
		e.emit("kitty_reveal", protocol.Broadcast, protocol.KittyRevealPayload{
			Cards:      e.Kitty,
			Multiplier: mult,
			Steps:      steps,
			Total:      kittyBonus,
		})
	}

	attackerPoints := e.Points[attacker]
	outcome := roundOutcome(attackerPoints)

	advancing := -1
	if outcome.BankerSwaps {
		if outcome.AttackerAdvances {
			advancing = attacker
		}
		e.nextBanker = last.WinnerSeat
	} else {
		advancing = defender
		e.nextBanker = (e.BankerSeat + 2) % NumSeats
	}
	if advancing >= 0 {
		e.Levels[advancing] = shared.AdvanceLevel(e.Levels[advancing], outcome.LevelDelta)
	}

	e.setPhase(PhaseRoundScore)
	e.emit("round_result", protocol.Broadcast, protocol.RoundResultPayload{
		DefenderTeam:   defender,
		AttackerTeam:   attacker,
		AttackerPoints: attackerPoints,
		KittyBonus:     kittyBonus,
		TeamPoints:     e.Points,
		PointCards:     e.PointCards,
		LevelDelta:     outcome.LevelDelta,
		AdvancingTeam:  advancing,
		BankerSwapped:  outcome.BankerSwaps,
		Levels:         e.Levels,
		NextBankerSeat: e.nextBanker,
		Kitty:          e.Kitty,
		Tricks:         e.trickSummaries(),
	})

	if advancing >= 0 && e.Levels[advancing] == TopLevel {
		e.Phase = PhaseGameOver
		e.emit("phase_change", protocol.Broadcast, protocol.PhaseChangePayload{Phase: string(PhaseGameOver)})
		e.emit("game_over", protocol.Broadcast, protocol.GameOverPayload{WinningTeam: advancing, Levels: e.Levels})
	}
}

func (e *Engine) trickSummaries() []protocol.TrickSummary {
	out := make([]protocol.TrickSummary, len(e.History))
	for i, rec := range e.History {
		plays := make([]protocol.PlaySummary, len(rec.Plays))
		for j, play := range rec.Plays {
			plays[j] = protocol.PlaySummary{Seat: play.Seat, CardIDs: cardIDs(play.Cards)}
		}
		out[i] = protocol.TrickSummary{WinnerSeat: rec.WinnerSeat, Plays: plays}
	}
	return out
}
