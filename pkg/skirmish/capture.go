package skirmish

// CaptureResult describes the ownership transfer and its knock-on effects.
type CaptureResult struct {
	CityID       int64
	NewOwnerID   int64
	EliminatedID int64 // 0 when the former owner still holds cities
	Finished     bool
	WinnerID     int64
}

// captureCity transfers a defeated city to the attacker's participant with
// hp pinned to exactly 1, then checks elimination and game termination.
// Captured cities are never destroyed.
func captureCity(gs *GameState, city *City, newOwnerID int64) CaptureResult {
	formerOwnerID := city.OwnerID
	city.OwnerID = newOwnerID
	city.HP = 1
	city.Acted = true

	res := CaptureResult{CityID: city.ID, NewOwnerID: newOwnerID}

	if len(gs.CitiesOf(formerOwnerID)) == 0 {
		if p := gs.ParticipantByID(formerOwnerID); p != nil {
			p.Eliminated = true
			res.EliminatedID = formerOwnerID
		}
	}

	var alive []*Participant
	for i := range gs.Participants {
		if !gs.Participants[i].Eliminated {
			alive = append(alive, &gs.Participants[i])
		}
	}
	if len(alive) == 1 {
		gs.Status = StatusFinished
		gs.ActiveID = 0
		gs.WinnerID = alive[0].ID
		res.Finished = true
		res.WinnerID = alive[0].ID
	}
	return res
}
