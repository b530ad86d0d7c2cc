package execution

// Roster is the crew snapshot of one execution: the member set plus the
// designated responsible party, who must belong to the set once execution
// starts.
type Roster struct {
	memberIDs     []int64
	responsibleID *uint
}

func NewRoster(memberIDs []int64, responsibleID *uint) *Roster {
	return &Roster{
		memberIDs:     dedupeIDs(memberIDs),
		responsibleID: responsibleID,
	}
}

func (r *Roster) MemberIDs() []int64 {
	return append([]int64(nil), r.memberIDs...)
}

func (r *Roster) ResponsibleID() *uint {
	return r.responsibleID
}

func (r *Roster) Empty() bool {
	return len(r.memberIDs) == 0
}

func (r *Roster) Contains(userID uint) bool {
	for _, id := range r.memberIDs {
		if id == int64(userID) {
			return true
		}
	}
	return false
}

// ResponsibleIsMember reports whether the responsible-party invariant holds.
// A roster without a responsible party is not yet bound by it.
func (r *Roster) ResponsibleIsMember() bool {
	if r.responsibleID == nil {
		return true
	}
	return r.Contains(*r.responsibleID)
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
