package service

import "github.com/alexindevs/orgbase/internal/domain"

// UserView is the outward representation of a user, without credentials.
type UserView struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// OrganisationView is the outward representation of an organisation.
type OrganisationView struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OrganisationUsersView pairs an organisation with its member profiles.
type OrganisationUsersView struct {
	OrgID       string     `json:"orgId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Users       []UserView `json:"users"`
}

// Session is the result of a successful registration or login.
type Session struct {
	AccessToken string   `json:"accessToken"`
	User        UserView `json:"user"`
}

// Registration extends Session with the default organisation created for
// the new user.
type Registration struct {
	Session
	Organisation OrganisationView `json:"-"`
}

// NewUserView maps a domain user to its view.
func NewUserView(u domain.User) UserView {
	return UserView{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// NewOrganisationView maps a domain organisation to its view.
func NewOrganisationView(o domain.Organisation) OrganisationView {
	return OrganisationView{
		OrgID:       o.ID,
		Name:        o.Name,
		Description: o.Description,
	}
}

// NewOrganisationViews maps a slice of organisations.
func NewOrganisationViews(orgs []domain.Organisation) []OrganisationView {
	views := make([]OrganisationView, 0, len(orgs))
	for _, org := range orgs {
		views = append(views, NewOrganisationView(org))
	}
	return views
}

// NewUserViews maps a slice of users.
func NewUserViews(users []domain.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}
