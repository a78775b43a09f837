package domain

type ScopeKind uint8

const (
	SCOPE_BRANCH ScopeKind = iota
	SCOPE_BUSINESS
)

var ScopeKinds = [...]string{"branch", "business"}

func (k ScopeKind) ToString() string {
	return ScopeKinds[k]
}

// Scope is the owning side of a credential or callback url: a branch or a
// whole business, never both.
type Scope struct {
	Kind ScopeKind
	ID   uint
}

func BranchScope(id uint) Scope {
	return Scope{Kind: SCOPE_BRANCH, ID: id}
}

func BusinessScope(id uint) Scope {
	return Scope{Kind: SCOPE_BUSINESS, ID: id}
}

func (s Scope) IsBranch() bool {
	return s.Kind == SCOPE_BRANCH
}

// BranchID and BusinessID project the scope back onto the two nullable
// columns the tables carry.
func (s Scope) BranchID() *uint {
	if s.Kind != SCOPE_BRANCH {
		return nil
	}
	id := s.ID
	return &id
}

func (s Scope) BusinessID() *uint {
	if s.Kind != SCOPE_BUSINESS {
		return nil
	}
	id := s.ID
	return &id
}

func ScopeFromColumns(branchID, businessID *uint) Scope {
	if branchID != nil {
		return BranchScope(*branchID)
	}
	if businessID != nil {
		return BusinessScope(*businessID)
	}
	return Scope{}
}
