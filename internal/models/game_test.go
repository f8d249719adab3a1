package models

import "testing"

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from Phase
		to   Phase
		want bool
	}{
		{PhaseAwaitingConnections, PhaseQuestionsAssigned, true},
		{PhaseQuestionsAssigned, PhaseCountdown, true},
		{PhaseCountdown, PhaseActive, true},
		{PhaseActive, PhaseFinished, true},
		{PhaseAwaitingConnections, PhaseFinished, true},
		{PhaseCountdown, PhaseFinished, true},
		{PhaseFinished, PhaseActive, false},
		{PhaseFinished, PhaseFinished, false},
		{PhaseActive, PhaseCountdown, false},
		{PhaseAwaitingConnections, PhaseCountdown, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestGameTypeIsValid(t *testing.T) {
	for _, valid := range []GameType{GameTypeArithmetic, GameTypeAntonyms, GameTypeSynonyms, GameTypeTranslation} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if GameType("chess").IsValid() {
		t.Error("unknown game type should be invalid")
	}
}

func TestBoardClear(t *testing.T) {
	b := NewBoard(3)
	if got := b.ActiveCount(); got != 9 {
		t.Fatalf("ActiveCount() = %d, want 9", got)
	}
	if !b.Clear(1, 1) {
		t.Fatal("first clear should succeed")
	}
	if b.Clear(1, 1) {
		t.Fatal("second clear of the same cell should fail")
	}
	if got := b.ActiveCount(); got != 8 {
		t.Fatalf("ActiveCount() after one clear = %d, want 8", got)
	}
	if b.InBounds(3, 0) || b.InBounds(0, -1) {
		t.Error("out-of-grid coordinates reported in bounds")
	}
}
