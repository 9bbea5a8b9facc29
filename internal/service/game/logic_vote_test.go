package game

import (
	"testing"
)

func voteRoot(rules Ruleset, players ...*Player) *RootState {
	return &RootState{
		Day:      1,
		Players:  players,
		Rules:    rules,
		VoteSkip: make(map[string]struct{}),
		Host:     players[0].Name,
	}
}

func TestVotePhase_PreventsDuplicateVotes(t *testing.T) {
	root := voteRoot(
		DefaultRuleset(),
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
	)

	vp := NewVotePhase()

	if _, err := vp.HandleAction(root, "alice", Action{Type: ACTION_VOTE, Target: "bob"}); err != nil {
		t.Fatalf("first vote should succeed, got: %v", err)
	}

	votes := vp.(*votePhase).Votes
	if got := votes["alice"]; got != "bob" {
		t.Fatalf("vote not recorded correctly, want bob got %q", got)
	}

	if _, err := vp.HandleAction(root, "alice", Action{Type: ACTION_VOTE, Target: "bob"}); err == nil {
		t.Fatalf("duplicate vote should be rejected")
	}

	if len(votes) != 1 {
		t.Fatalf("duplicate vote mutated votes map, want len=1 got %d", len(votes))
	}
}

func TestVotePhase_DeadPlayersCannotVote(t *testing.T) {
	dead := NewPlayer("ghost", "s2")
	dead.State = STATE_DEAD

	root := voteRoot(DefaultRuleset(), NewPlayer("alice", "s1"), dead)

	vp := NewVotePhase()

	if _, err := vp.HandleAction(root, "ghost", Action{Type: ACTION_VOTE, Target: "alice"}); err != ErrWrongState {
		t.Fatalf("dead vote should fail with ErrWrongState, got: %v", err)
	}
}

func TestVotePhase_SkipIsRecordedOnRootState(t *testing.T) {
	root := voteRoot(
		DefaultRuleset(),
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
	)

	vp := NewVotePhase()

	if _, err := vp.HandleAction(root, "alice", Action{Type: ACTION_VOTE, Skip: true}); err != nil {
		t.Fatalf("skip vote should succeed, got: %v", err)
	}

	if _, ok := root.VoteSkip["alice"]; !ok {
		t.Fatalf("skip not recorded in vote_skip set")
	}

	// 弃票之后不允许再投票
	if _, err := vp.HandleAction(root, "alice", Action{Type: ACTION_VOTE, Target: "bob"}); err == nil {
		t.Fatalf("vote after skip should be rejected")
	}
}

func TestVotePhase_MajorityCondemnsToLastWords(t *testing.T) {
	root := voteRoot(
		DefaultRuleset(),
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
		NewPlayer("carol", "s3"),
	)

	vp := NewVotePhase()
	vp.(*votePhase).Votes = map[string]string{
		"alice": "bob",
		"carol": "bob",
	}

	next := vp.NextPhase(root)

	if next.Kind() != PHASE_LAST_WORDS {
		t.Fatalf("majority vote should lead to LastWords, got %s", next.Kind())
	}

	if got := next.(*lastWordsPhase).Condemned; got != "bob" {
		t.Fatalf("condemned should be bob, got %q", got)
	}

	if root.NextStateTime == nil {
		t.Fatalf("entering LastWords should arm a deadline")
	}
}

func TestVotePhase_NoMajoritySkipsToEvening(t *testing.T) {
	root := voteRoot(
		DefaultRuleset(),
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
		NewPlayer("carol", "s3"),
		NewPlayer("dan", "s4"),
	)

	vp := NewVotePhase()
	vp.(*votePhase).Votes = map[string]string{
		"alice": "bob",
	}

	if next := vp.NextPhase(root); next.Kind() != PHASE_EVENING {
		t.Fatalf("single vote of four alive should not condemn, got %s", next.Kind())
	}
}

func TestVotePhase_PluralityModeCondemnsWithoutMajority(t *testing.T) {
	rules := DefaultRuleset()
	rules.VoteMajority = false

	root := voteRoot(
		rules,
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
		NewPlayer("carol", "s3"),
		NewPlayer("dan", "s4"),
		NewPlayer("eve", "s5"),
	)

	vp := NewVotePhase()
	vp.(*votePhase).Votes = map[string]string{
		"alice": "bob",
		"carol": "dan",
		"eve":   "bob",
	}

	next := vp.NextPhase(root)

	if next.Kind() != PHASE_LAST_WORDS {
		t.Fatalf("plurality mode should condemn the top target, got %s", next.Kind())
	}

	if got := next.(*lastWordsPhase).Condemned; got != "bob" {
		t.Fatalf("condemned should be bob, got %q", got)
	}
}

func TestVotePhase_TieCondemnsNobody(t *testing.T) {
	rules := DefaultRuleset()
	rules.VoteMajority = false

	root := voteRoot(
		rules,
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
	)

	vp := NewVotePhase()
	vp.(*votePhase).Votes = map[string]string{
		"alice": "bob",
		"bob":   "alice",
	}

	if next := vp.NextPhase(root); next.Kind() != PHASE_EVENING {
		t.Fatalf("tied vote should condemn nobody, got %s", next.Kind())
	}
}

func TestLastWordsPhase_ExecutesCondemnedOnExit(t *testing.T) {
	root := voteRoot(
		DefaultRuleset(),
		NewPlayer("alice", "s1"),
		NewPlayer("bob", "s2"),
	)

	lw := NewLastWordsPhase("bob")

	if next := lw.NextPhase(root); next.Kind() != PHASE_EVENING {
		t.Fatalf("LastWords should advance to Evening, got %s", next.Kind())
	}

	if !root.FindPlayer("bob").IsDead() {
		t.Fatalf("condemned player should be dead after LastWords")
	}
}
