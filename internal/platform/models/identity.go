package models

// Entity is implemented by every DTO the backend addresses by _id.
type Entity interface {
	EntityID() string
}

func (o Organization) EntityID() string      { return o.ID }
func (u User) EntityID() string              { return u.ID }
func (p Payment) EntityID() string           { return p.ID }
func (p Plan) EntityID() string              { return p.ID }
func (w WalletTransaction) EntityID() string { return w.ID }
func (c Contact) EntityID() string           { return c.ID }
func (l Log) EntityID() string               { return l.ID }
func (l EmailLog) EntityID() string          { return l.ID }
func (c Category) EntityID() string          { return c.ID }
func (t Template) EntityID() string          { return t.ID }
func (t SupportTicket) EntityID() string     { return t.ID }
func (a Asset) EntityID() string             { return a.ID }
func (t Task) EntityID() string              { return t.ID }
