package entities

import "testing"

func TestRankOptionsOrdersByVotesThenOptionID(t *testing.T) {
	counts := map[string]int{
		"opt-c": 1,
		"opt-a": 2,
		"opt-b": 2,
	}
	texts := map[string]string{
		"opt-a": "Pizza",
		"opt-b": "Sushi",
		"opt-c": "Tacos",
	}

	ranking := RankOptions(counts, texts)
	if len(ranking) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranking))
	}
	if ranking[0].OptionID != "opt-a" || ranking[1].OptionID != "opt-b" {
		t.Fatalf("expected tied leaders ordered by option id, got %s then %s", ranking[0].OptionID, ranking[1].OptionID)
	}
	if ranking[2].OptionID != "opt-c" || ranking[2].Votes != 1 {
		t.Fatalf("expected opt-c last with 1 vote, got %+v", ranking[2])
	}
}

func TestRankOptionsOmitsZeroVoteOptions(t *testing.T) {
	counts := map[string]int{"opt-a": 1}
	texts := map[string]string{
		"opt-a": "Pizza",
		"opt-b": "Sushi",
	}

	ranking := RankOptions(counts, texts)
	if len(ranking) != 1 {
		t.Fatalf("expected only voted options, got %d entries", len(ranking))
	}
	if ranking[0].OptionID != "opt-a" {
		t.Fatalf("unexpected option %s", ranking[0].OptionID)
	}
}

func TestRankOptionsSubstitutesDeletedOptionText(t *testing.T) {
	counts := map[string]int{"opt-ghost": 3}

	ranking := RankOptions(counts, map[string]string{})
	if len(ranking) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ranking))
	}
	if ranking[0].Text != DeletedOptionText {
		t.Fatalf("expected placeholder text, got %q", ranking[0].Text)
	}
}

func TestTiedLeaders(t *testing.T) {
	ranking := []OptionTally{
		{OptionID: "opt-a", Votes: 2},
		{OptionID: "opt-b", Votes: 2},
		{OptionID: "opt-c", Votes: 1},
	}
	leaders := TiedLeaders(ranking)
	if len(leaders) != 2 {
		t.Fatalf("expected 2 leaders, got %d", len(leaders))
	}
	for _, leader := range leaders {
		if leader.Votes != 2 {
			t.Fatalf("leader with non-max count: %+v", leader)
		}
	}

	if got := TiedLeaders(ranking[2:]); len(got) != 1 {
		t.Fatalf("expected single leader, got %d", len(got))
	}
	if got := TiedLeaders(nil); got != nil {
		t.Fatalf("expected nil leaders for empty ranking, got %v", got)
	}
}
