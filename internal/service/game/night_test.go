package game

import (
	"strings"
	"testing"
)

func nightRoot(t *testing.T) (*RootState, map[string]*testConn) {
	t.Helper()

	root, conns := connectedRoot(
		DefaultRuleset(),
		"mafi", "doc", "tec", "bar", "civ",
	)

	root.FindPlayer("mafi").Role = ROLE_MAFIOSO
	root.FindPlayer("doc").Role = ROLE_DOCTOR
	root.FindPlayer("tec").Role = ROLE_DETECTIVE
	root.FindPlayer("bar").Role = ROLE_BARTENDER

	return root, conns
}

func TestNightPhase_RoleLegality(t *testing.T) {
	root, _ := nightRoot(t)

	np := NewNightPhase()

	cases := []struct {
		sender string
		kind   string
		ok     bool
	}{
		{"doc", NIGHT_SAVE, true},
		{"tec", NIGHT_INVESTIGATE, true},
		{"bar", NIGHT_NEGATE, true},
		{"mafi", NIGHT_VOTE, true},
		{"civ", NIGHT_SAVE, false},
		{"civ", NIGHT_VOTE, false},
		{"doc", NIGHT_INVESTIGATE, false},
		{"mafi", NIGHT_SAVE, false},
	}

	for _, c := range cases {
		_, err := np.HandleAction(root, c.sender, Action{
			Type:      ACTION_NIGHT,
			NightKind: c.kind,
			Target:    "civ",
		})

		if c.ok && err != nil {
			t.Fatalf("%s should be allowed to %s, got: %v", c.sender, c.kind, err)
		}

		if !c.ok && err != ErrWrongState {
			t.Fatalf("%s must not be allowed to %s, got: %v", c.sender, c.kind, err)
		}
	}
}

func TestNightPhase_LastSubmissionWins(t *testing.T) {
	root, _ := nightRoot(t)

	np := NewNightPhase()

	if _, err := np.HandleAction(root, "mafi", Action{
		Type: ACTION_NIGHT, NightKind: NIGHT_VOTE, Target: "civ",
	}); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	if _, err := np.HandleAction(root, "mafi", Action{
		Type: ACTION_NIGHT, NightKind: NIGHT_VOTE, Target: "doc",
	}); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}

	if got := np.(*nightPhase).Actions["mafi"].Target; got != "doc" {
		t.Fatalf("last submission should win, want doc got %q", got)
	}
}

func TestNightResolution_MafiaKillLands(t *testing.T) {
	root, _ := nightRoot(t)

	np := NewNightPhase()
	np.(*nightPhase).Actions["mafi"] = nightAction{Kind: NIGHT_VOTE, Target: "civ"}

	next := np.NextPhase(root)

	if next.Kind() != PHASE_MORNING {
		t.Fatalf("night should end in Morning, got %s", next.Kind())
	}

	if !root.FindPlayer("civ").IsDead() {
		t.Fatalf("unprotected victim should be dead")
	}

	if root.Day != 2 {
		t.Fatalf("day should advance, want 2 got %d", root.Day)
	}
}

func TestNightResolution_DoctorSaveCancelsKill(t *testing.T) {
	root, _ := nightRoot(t)

	np := NewNightPhase()
	np.(*nightPhase).Actions["mafi"] = nightAction{Kind: NIGHT_VOTE, Target: "civ"}
	np.(*nightPhase).Actions["doc"] = nightAction{Kind: NIGHT_SAVE, Target: "civ"}

	np.NextPhase(root)

	if root.FindPlayer("civ").IsDead() {
		t.Fatalf("saved victim should survive the night")
	}
}

func TestNightResolution_BartenderNegatesAction(t *testing.T) {
	root, _ := nightRoot(t)

	np := NewNightPhase()
	np.(*nightPhase).Actions["mafi"] = nightAction{Kind: NIGHT_VOTE, Target: "civ"}
	np.(*nightPhase).Actions["bar"] = nightAction{Kind: NIGHT_NEGATE, Target: "mafi"}

	np.NextPhase(root)

	if root.FindPlayer("civ").IsDead() {
		t.Fatalf("negated mafioso should not get a kill")
	}
}

func TestNightResolution_DetectiveReport(t *testing.T) {
	root, conns := nightRoot(t)

	np := NewNightPhase()
	np.(*nightPhase).Actions["tec"] = nightAction{Kind: NIGHT_INVESTIGATE, Target: "mafi"}

	np.NextPhase(root)

	found := false

	for _, text := range conns["tec"].texts() {
		if strings.Contains(text, "mafi is a member of the mafia") {
			found = true
		}
	}

	if !found {
		t.Fatalf("detective should receive a mafia report, got %v", conns["tec"].texts())
	}

	for _, text := range conns["civ"].texts() {
		if strings.Contains(text, "member of the mafia") {
			t.Fatalf("investigation report leaked to another player")
		}
	}
}
