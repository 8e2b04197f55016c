package game

// PlayerSnapshot is the public view of one participant. Hands are exposed
// only as counts; a player's own cards travel separately to that player.
type PlayerSnapshot struct {
	ID        string
	Name      string
	Status    PlayerStatus
	CardCount int
}

// Snapshot is the read-only view of a session used for broadcasting. It
// never aliases live engine state.
type Snapshot struct {
	ID             string
	Phase          PhaseKind
	PlayersLimit   int
	Players        []PlayerSnapshot
	TrumpSuit      Suit
	TrumpCard      Card
	TableCards     []Pair
	DeckRemaining  int
	AttackerID     string
	DefenderID     string
	AllowedActions map[string][]Action
}

// Snapshot captures the current session state for clients.
func (s *Session) Snapshot() *Snapshot {
	players := make([]PlayerSnapshot, 0, len(s.Players))
	for _, pl := range s.Players {
		players = append(players, PlayerSnapshot{
			ID:        pl.ID,
			Name:      pl.Name,
			Status:    pl.Status,
			CardCount: pl.HandSize(),
		})
	}
	return &Snapshot{
		ID:             s.ID,
		Phase:          s.phase.Kind(),
		PlayersLimit:   s.PlayersLimit,
		Players:        players,
		TrumpSuit:      s.Deck.TrumpSuit(),
		TrumpCard:      s.Deck.TrumpCard(),
		TableCards:     s.Table.Pairs(),
		DeckRemaining:  s.Deck.Len(),
		AttackerID:     s.AttackerID,
		DefenderID:     s.DefenderID,
		AllowedActions: s.AllowedActions(),
	}
}

// HandOf returns the sorted hand of one player for that player's own client.
func (s *Session) HandOf(playerID string) []Card {
	pl := s.playerByID(playerID)
	if pl == nil {
		return nil
	}
	return pl.Hand()
}
