package domain

// Action enumerates everything the API can be asked to do. The policy
// is a pure function over (actor role, actor id, action, resource
// owner); denial is a normal outcome, not an error.
type Action int

const (
	ActionCatalogRead Action = iota
	ActionCatalogWrite
	ActionLoanCreate
	ActionLoanView
	ActionLoanList
	ActionLoanUpdate
	ActionLoanDelete
	ActionLoanReturn
	ActionDashboardLibrarian
	ActionDashboardMember
	ActionUserRead
	ActionUserWrite
)

// Allow decides whether actor may perform action. ownerID is the id of
// the user owning the touched resource (the borrower for loan actions,
// the target user for ActionLoanCreate); it is ignored for actions that
// are purely role-gated.
func Allow(actor *User, action Action, ownerID string) bool {
	if actor == nil {
		return false
	}
	switch action {
	case ActionCatalogRead, ActionUserRead, ActionLoanList:
		// list scoping for members happens at the query layer;
		// the action itself is open to any authenticated user
		return true
	case ActionCatalogWrite, ActionLoanUpdate, ActionLoanDelete, ActionLoanReturn,
		ActionDashboardLibrarian, ActionUserWrite:
		return actor.IsLibrarian()
	case ActionLoanCreate:
		return actor.IsMember() && actor.ID == ownerID
	case ActionLoanView:
		return actor.IsLibrarian() || actor.ID == ownerID
	case ActionDashboardMember:
		return actor.IsMember()
	}
	return false
}
