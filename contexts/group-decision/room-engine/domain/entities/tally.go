package entities

import "sort"

// DeletedOptionText stands in for the text of an option that no longer
// exists but is still referenced by votes.
const DeletedOptionText = "Deleted option"

type OptionTally struct {
	OptionID string
	Text     string
	Votes    int
}

// RankOptions builds the per-option ranking for a room, descending by vote
// count. Options with zero votes are omitted. Equal counts order by option
// id so repeated reads over the same votes stay stable; this ordering is a
// reporting detail, not the tiebreaker resolution.
func RankOptions(counts map[string]int, texts map[string]string) []OptionTally {
	items := make([]OptionTally, 0, len(counts))
	for optionID, votes := range counts {
		text, ok := texts[optionID]
		if !ok {
			text = DeletedOptionText
		}
		items = append(items, OptionTally{
			OptionID: optionID,
			Text:     text,
			Votes:    votes,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Votes == items[j].Votes {
			return items[i].OptionID < items[j].OptionID
		}
		return items[i].Votes > items[j].Votes
	})
	return items
}

// TiedLeaders returns every tally sharing the maximum vote count of the
// given ranking. An empty ranking yields nil.
func TiedLeaders(ranking []OptionTally) []OptionTally {
	if len(ranking) == 0 {
		return nil
	}
	top := ranking[0].Votes
	leaders := make([]OptionTally, 0, len(ranking))
	for _, item := range ranking {
		if item.Votes == top {
			leaders = append(leaders, item)
		}
	}
	return leaders
}
