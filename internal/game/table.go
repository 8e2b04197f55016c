package game

// defaultSlots is the table capacity for the first round of a hand. Once the
// defender survives a round cleanly the table grows to fullSlots.
const (
	defaultSlots = 5
	fullSlots    = 6
)

// Pair is one attack card on the table together with the card that beat it,
// if any. A pair is resolved once Defend is set.
type Pair struct {
	Attack Card
	Defend *Card
}

// Resolved reports whether the attack card has been beaten.
func (p Pair) Resolved() bool {
	return p.Defend != nil
}

// Table holds the ordered attack/defense pairs of the current round and
// enforces throw-in and defense legality.
type Table struct {
	pairs []Pair
	slots int
}

// NewTable creates an empty table with the first-round slot capacity.
func NewTable() *Table {
	return &Table{slots: defaultSlots}
}

// Pairs returns a copy of the current attack/defense pairs.
func (t *Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Len returns the number of attack cards placed this round.
func (t *Table) Len() int {
	return len(t.pairs)
}

// Slots returns the current pair capacity.
func (t *Table) Slots() int {
	return t.slots
}

// SetSlots changes the pair capacity for subsequent rounds.
func (t *Table) SetSlots(n int) {
	t.slots = n
}

// Clear removes every pair. Capacity is kept; it only resets on a new hand.
func (t *Table) Clear() {
	t.pairs = t.pairs[:0]
}

// ResetSlots restores the first-round capacity.
func (t *Table) ResetSlots() {
	t.slots = defaultSlots
}

// contains reports whether card sits on the table on either side of a pair.
func (t *Table) contains(card Card) bool {
	for _, p := range t.pairs {
		if p.Attack == card {
			return true
		}
		if p.Defend != nil && *p.Defend == card {
			return true
		}
	}
	return false
}

// hasRank reports whether any card on the table has the given rank.
func (t *Table) hasRank(rank Rank) bool {
	for _, p := range t.pairs {
		if p.Attack.Rank == rank {
			return true
		}
		if p.Defend != nil && p.Defend.Rank == rank {
			return true
		}
	}
	return false
}

// ValidateThrow checks whether card may be placed as a new attack. An empty
// table accepts any first card; afterwards the rank must already be present.
func (t *Table) ValidateThrow(card Card) error {
	if t.contains(card) {
		return newGameError(CodeCardAlreadyOnTable, "%s is already on the table", card)
	}
	if len(t.pairs) >= t.slots {
		return newGameError(CodeNoFreeSlots, "all %d table slots are taken", t.slots)
	}
	if len(t.pairs) > 0 && !t.hasRank(card.Rank) {
		return newGameError(CodeInvalidThrowRank, "no card of rank %s is on the table", card.Rank)
	}
	return nil
}

// Throw places card as a new unresolved attack after validating it.
func (t *Table) Throw(card Card) error {
	if err := t.ValidateThrow(card); err != nil {
		return err
	}
	t.pairs = append(t.pairs, Pair{Attack: card})
	return nil
}

// ValidateDefense checks whether defendCard legally beats attackCard, which
// must be an unresolved attack on the table.
func (t *Table) ValidateDefense(attackCard, defendCard Card) error {
	idx := t.unresolvedIndex(attackCard)
	if idx < 0 {
		return newGameError(CodeCardNotOnTable, "%s is not an open attack on the table", attackCard)
	}
	if defendCard.Beats(attackCard) {
		return nil
	}
	if attackCard.Suit != defendCard.Suit && !defendCard.Trump {
		return newGameError(CodeInvalidDefenseSuit, "%s cannot beat %s: wrong suit and not a trump", defendCard, attackCard)
	}
	return newGameError(CodeInvalidDefenseValue, "%s does not outrank %s", defendCard, attackCard)
}

// Defend resolves the pair holding attackCard with defendCard.
func (t *Table) Defend(attackCard, defendCard Card) error {
	if err := t.ValidateDefense(attackCard, defendCard); err != nil {
		return err
	}
	idx := t.unresolvedIndex(attackCard)
	c := defendCard
	t.pairs[idx].Defend = &c
	return nil
}

func (t *Table) unresolvedIndex(attackCard Card) int {
	for i, p := range t.pairs {
		if p.Attack == attackCard && !p.Resolved() {
			return i
		}
	}
	return -1
}

// AllDefended reports whether every attack on the table has been beaten.
// An empty table counts as fully defended.
func (t *Table) AllDefended() bool {
	for _, p := range t.pairs {
		if !p.Resolved() {
			return false
		}
	}
	return true
}

// UndefendedCount returns the number of unresolved attack cards.
func (t *Table) UndefendedCount() int {
	n := 0
	for _, p := range t.pairs {
		if !p.Resolved() {
			n++
		}
	}
	return n
}

// AllCards flattens the table into a single list of attack and defense cards.
// Used when the defender concedes and must take everything.
func (t *Table) AllCards() []Card {
	cards := make([]Card, 0, len(t.pairs)*2)
	for _, p := range t.pairs {
		cards = append(cards, p.Attack)
		if p.Defend != nil {
			cards = append(cards, *p.Defend)
		}
	}
	return cards
}
