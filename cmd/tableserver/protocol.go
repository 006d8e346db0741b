package main

import (
	"encoding/json"
	"math"
	"time"

	"pokertable/internal/engine"
	"pokertable/internal/sitout"
)

// clientCommand is the JSON envelope the boundary accepts. Type selects
// the command; the remaining fields are per-type payload.
type clientCommand struct {
	CmdID     string          `json:"cmdId"`
	Type      string          `json:"type"`
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	TableID   string          `json:"tableId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Seat      *int            `json:"seat,omitempty"`
	BuyIn     json.Number     `json:"buyIn,omitempty"`
	PlayerID  string          `json:"playerId,omitempty"`
	Action    string          `json:"action,omitempty"`
	Amount    json.Number     `json:"amount,omitempty"`
	BlindType string          `json:"blindType,omitempty"`
}

// Error codes surfaced to clients.
const (
	codeInvalidSeat    = "INVALID_SEAT"
	codeSeatTaken      = "SEAT_TAKEN"
	codeInvalidBuyIn   = "INVALID_BUYIN"
	codeActionFailed   = "ACTION_FAILED"
	codeSeatingFailed  = "SEATING_FAILED"
	codeRebuyFailed    = "REBUY_FAILED"
	codeUnknownCommand = "UNKNOWN_COMMAND"
	codeBadJSON        = "BAD_JSON"
)

// chipAmount validates that a JSON number is a non-negative finite
// integer chip amount; fractional or non-finite inputs fail.
func chipAmount(n json.Number) (int64, bool) {
	if n == "" {
		return 0, true
	}
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, false
		}
		return v, true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int64(f), true
}

func parseActionKind(s string) (engine.ActionKind, bool) {
	switch s {
	case "FOLD":
		return engine.ActionFold, true
	case "CHECK":
		return engine.ActionCheck, true
	case "CALL":
		return engine.ActionCall, true
	case "BET":
		return engine.ActionBet, true
	case "RAISE":
		return engine.ActionRaise, true
	case "ALLIN":
		return engine.ActionAllIn, true
	default:
		return engine.ActionFold, false
	}
}

type seatView struct {
	Seat            int    `json:"seat"`
	PlayerID        string `json:"playerId,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	Chips           int64  `json:"chips"`
	Committed       int64  `json:"committed"`
	StreetCommitted int64  `json:"streetCommitted"`
	Status          string `json:"status"`
	LastAction      string `json:"lastAction,omitempty"`
	SittingOut      bool   `json:"sittingOut"`
	Cards           []int  `json:"cards,omitempty"`
}

type potView struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
	Cap      *int64   `json:"cap,omitempty"`
}

type tableSnapshot struct {
	TableID    string     `json:"tableId"`
	HandNumber int        `json:"handNumber"`
	Phase      string     `json:"phase"`
	Street     string     `json:"street,omitempty"`
	Button     int        `json:"button"`
	SmallBlind int64      `json:"smallBlind"`
	BigBlind   int64      `json:"bigBlind"`
	CurrentBet int64      `json:"currentBet"`
	MinRaise   int64      `json:"minRaise"`
	Actor      *int       `json:"actor,omitempty"`
	Community  []int      `json:"community"`
	Pots       []potView  `json:"pots"`
	Seats      []seatView `json:"seats"`
}

// buildSnapshot renders the table for one viewer. Hole cards are visible
// only to their owner until showdown; the sitting-out flag is derived from
// the controller, never from seat status.
func buildSnapshot(t engine.Table, so *sitout.Controller, viewerID string) tableSnapshot {
	snap := tableSnapshot{
		TableID:    t.TableID,
		HandNumber: t.HandNumber,
		Phase:      t.Phase.String(),
		Button:     t.ButtonIndex,
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
		CurrentBet: t.CurrentBet,
		MinRaise:   t.LastRaiseSize,
		Actor:      t.Actor,
		Community:  make([]int, 0, len(t.CommunityCards)),
		Pots:       make([]potView, 0, len(t.Pots)),
		Seats:      make([]seatView, 0, engine.NumSeats),
	}
	if t.Street != engine.StreetNone {
		snap.Street = t.Street.String()
	}
	for _, c := range t.CommunityCards {
		snap.Community = append(snap.Community, c.ID())
	}
	for _, p := range t.Pots {
		pv := potView{Amount: p.Amount, Cap: p.Cap}
		for id := range p.Eligible {
			pv.Eligible = append(pv.Eligible, id)
		}
		snap.Pots = append(snap.Pots, pv)
	}
	showdown := t.Phase == engine.PhaseShowdown || t.Phase == engine.PhasePayout || t.Phase == engine.PhaseHandEnd
	for _, s := range t.Seats {
		sv := seatView{
			Seat:            s.ID,
			PlayerID:        s.PlayerID,
			Nickname:        s.Nickname,
			Chips:           s.Chips,
			Committed:       s.Committed,
			StreetCommitted: s.StreetCommitted,
			Status:          s.Status.String(),
			LastAction:      s.LastAction,
		}
		if s.PlayerID != "" && so != nil {
			sv.SittingOut = so.IsSittingOut(s.PlayerID)
		}
		if s.Hand != nil {
			reveal := s.PlayerID == viewerID || (showdown && s.Status.InHand())
			if reveal {
				sv.Cards = []int{s.Hand[0].ID(), s.Hand[1].ID()}
			}
		}
		snap.Seats = append(snap.Seats, sv)
	}
	return snap
}

func eventMsg(eventType string, payload map[string]interface{}) map[string]interface{} {
	msg := map[string]interface{}{"type": eventType}
	for k, v := range payload {
		msg[k] = v
	}
	return msg
}

func errorMsg(cmdID, code, detail string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "ERROR",
		"cmdId": cmdID,
		"code":  code,
		"msg":   detail,
	}
}

func countdownMsg(kind string, start time.Time, d time.Duration) map[string]interface{} {
	return eventMsg("COUNTDOWN_START", map[string]interface{}{
		"countdownType": kind,
		"startTime":     start.UnixMilli(),
		"duration":      d.Milliseconds(),
	})
}
