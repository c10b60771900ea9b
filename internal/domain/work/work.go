// Package work holds the work (film) read model.
package work

// Role is a contributor's role on a work.
type Role string

const (
	RoleActor    Role = "actor"
	RoleWriter   Role = "writer"
	RoleDirector Role = "director"
)

// Roles returns the fixed role set in fan-out order.
func Roles() []Role {
	return []Role{RoleActor, RoleWriter, RoleDirector}
}

// ContributorRef is an embedded contributor reference inside a work document.
type ContributorRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// CategoryRef is an embedded category reference inside a work document.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Work is a catalog work as stored in the search index. Read-only projection:
// this service never creates or mutates work documents.
type Work struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Rating      float64          `json:"rating"`
	Description string           `json:"description"`
	Cast        []ContributorRef `json:"actors"`
	Writers     []ContributorRef `json:"writers"`
	Directors   []ContributorRef `json:"directors"`
	Categories  []CategoryRef    `json:"categories"`
}

// Preview is the reduced projection used in listings and search results.
// Derived on read, never stored separately.
type Preview struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

// Preview derives the listing projection of the work.
func (w Work) Preview() Preview {
	return Preview{
		ID:          w.ID,
		Title:       w.Title,
		Rating:      w.Rating,
		Description: w.Description,
	}
}
