package game

import (
	"errors"
	"testing"
)

func TestSession_CreateUserRejectsTakenName(t *testing.T) {
	s := NewSession("sess-1", "alice", "secret-a", DefaultRuleset())

	if err := s.CreateUser("bob", "secret-b"); err != nil {
		t.Fatalf("first join should succeed, got: %v", err)
	}

	err := s.CreateUser("bob", "secret-b2")

	var taken *PlayerNameTakenError
	if !errors.As(err, &taken) || taken.Name != "bob" {
		t.Fatalf("duplicate name should fail with PlayerNameTaken, got: %v", err)
	}

	if len(s.Root.Players) != 2 {
		t.Fatalf("failed join must not grow the roster, want 2 got %d", len(s.Root.Players))
	}

	// 名字区分大小写，精确匹配之外的写法是新玩家
	if err := s.CreateUser("Bob", "secret-b3"); err != nil {
		t.Fatalf("name match is case-sensitive, got: %v", err)
	}
}

func TestSession_GetPlayernameResolvesSecrets(t *testing.T) {
	s := NewSession("sess-1", "alice", "secret-a", DefaultRuleset())

	if err := s.CreateUser("bob", "secret-b"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if name, ok := s.GetPlayername("secret-a"); !ok || name != "alice" {
		t.Fatalf("host secret should resolve to alice, got %q %v", name, ok)
	}

	if name, ok := s.GetPlayername("secret-b"); !ok || name != "bob" {
		t.Fatalf("issued secret should resolve to bob, got %q %v", name, ok)
	}

	if _, ok := s.GetPlayername("never-issued"); ok {
		t.Fatalf("unknown secret must not resolve")
	}
}

func TestSession_RegisterConnectionUnknownNameIsNoop(t *testing.T) {
	s := NewSession("sess-1", "alice", "secret-a", DefaultRuleset())

	// 迟到的清理可能指向已不存在的名字，必须静默忽略
	s.RegisterConnection("mallory", newTestConn("c1"))

	if got := s.GetConnection("mallory"); got != nil {
		t.Fatalf("unknown name must not be registered, got %v", got)
	}
}

func TestSession_RegisterAndClearConnection(t *testing.T) {
	s := NewSession("sess-1", "alice", "secret-a", DefaultRuleset())

	c1 := newTestConn("c1")
	s.RegisterConnection("alice", c1)

	if got := s.GetConnection("alice"); got != c1 {
		t.Fatalf("registered connection should be returned")
	}

	s.RegisterConnection("alice", nil)

	if got := s.GetConnection("alice"); got != nil {
		t.Fatalf("cleared connection should be nil, got %v", got)
	}
}

func TestSession_AdvanceIgnoresStaleSignals(t *testing.T) {
	rules := DefaultRuleset()
	rules.InitialPhase = PHASE_MORNING

	s := NewSession("sess-1", "alice", "secret-a", rules)

	if !s.Advance(PHASE_MORNING) {
		t.Fatalf("matching signal should advance")
	}

	if s.Phase.Kind() != PHASE_VOTE {
		t.Fatalf("Morning should advance to Vote, got %s", s.Phase.Kind())
	}

	// 同一个早晨的重复信号已经过期，不得再次推进
	if s.Advance(PHASE_MORNING) {
		t.Fatalf("stale signal must be dropped")
	}

	if s.Phase.Kind() != PHASE_VOTE {
		t.Fatalf("stale signal must not move the phase, got %s", s.Phase.Kind())
	}
}

func TestSession_HandleActionKeepsStateOnError(t *testing.T) {
	rules := DefaultRuleset()
	rules.InitialPhase = PHASE_MORNING

	s := NewSession("sess-1", "alice", "secret-a", rules)

	if err := s.HandleAction("alice", Action{Type: ACTION_VOTE, Target: "alice"}); err != ErrWrongState {
		t.Fatalf("vote in Morning should fail with ErrWrongState, got: %v", err)
	}

	if s.Phase.Kind() != PHASE_MORNING {
		t.Fatalf("failed action must not change the phase, got %s", s.Phase.Kind())
	}
}
