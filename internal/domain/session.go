package domain

// AdminSession is the capability guarding the review surface. The core
// never reads ambient state directly; it is handed an implementation
// (persistent in production, in-memory in tests).
type AdminSession interface {
	IsAuthenticated() bool
	Login(token string) error
	Logout() error
}
