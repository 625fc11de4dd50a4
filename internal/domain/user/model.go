package user

// Principal identifies the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Admin  bool
}

// CanManage reports whether the principal may mutate data owned by ownerUserID.
func (p Principal) CanManage(ownerUserID string) bool {
	return p.Admin || (p.UserID != "" && p.UserID == ownerUserID)
}
