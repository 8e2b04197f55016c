package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionStateRoundTrip(t *testing.T) {
	trump := SuitSpades
	hands := [][]Card{
		{{Rank: RankSix, Suit: SuitHearts}, {Rank: RankSeven, Suit: SuitHearts}},
		{{Rank: RankTen, Suit: SuitHearts}, {Rank: RankJack, Suit: SuitHearts}},
	}
	s := midGameSession(t, hands, 0, 1, []Card{{Rank: RankEight, Suit: SuitDiamonds}}, trump)

	attack := Card{Rank: RankSix, Suit: SuitHearts}
	mustRespond(t, s, PlayerInput{PlayerID: "p1", Action: ActionAttack, AttackCard: &attack})

	data, err := s.MarshalState()
	require.NoError(t, err)

	restored, err := RestoreSession(data, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, s.StateChecksum(), restored.StateChecksum(),
		"a restored session must be indistinguishable from the saved one")
	assert.Equal(t, s.Phase(), restored.Phase())
	assert.Equal(t, s.AttackerID, restored.AttackerID)
	assert.Equal(t, s.Deck.Len(), restored.Deck.Len())
	assert.Equal(t, 1, restored.Table.Len())

	// The restored session keeps playing.
	defend := Card{Rank: RankTen, Suit: SuitHearts}
	mustRespond(t, restored, PlayerInput{PlayerID: "p2", Action: ActionDefend, AttackCard: &attack, DefendCard: &defend})
	assert.True(t, restored.Table.AllDefended())
}

func TestStateChecksumDeterministic(t *testing.T) {
	trump := SuitHearts
	hands := [][]Card{
		{{Rank: RankAce, Suit: SuitSpades}, {Rank: RankSix, Suit: SuitHearts}},
		{{Rank: RankKing, Suit: SuitClubs}},
	}

	// Hands are sets; the checksum must not depend on iteration order.
	checksums := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		s := midGameSession(t, hands, 0, 1, nil, trump)
		checksums[s.StateChecksum()] = struct{}{}
	}
	assert.Len(t, checksums, 1)
}

func TestStateChecksumDetectsDivergence(t *testing.T) {
	trump := SuitHearts
	hands := [][]Card{
		{{Rank: RankSix, Suit: SuitClubs}, {Rank: RankSeven, Suit: SuitClubs}},
		{{Rank: RankEight, Suit: SuitClubs}},
	}
	a := midGameSession(t, hands, 0, 1, nil, trump)
	b := midGameSession(t, hands, 0, 1, nil, trump)
	require.Equal(t, a.StateChecksum(), b.StateChecksum())

	attack := Card{Rank: RankSix, Suit: SuitClubs}
	mustRespond(t, b, PlayerInput{PlayerID: "p1", Action: ActionAttack, AttackCard: &attack})
	assert.NotEqual(t, a.StateChecksum(), b.StateChecksum())
}

func TestRestoreSessionRejectsGarbage(t *testing.T) {
	_, err := RestoreSession([]byte("not json"), nil)
	assert.Error(t, err)

	_, err = RestoreSession([]byte(`{"players_limit": 1}`), nil)
	assert.Error(t, err, "the player limit is validated on restore")
}
