// Package contributor holds the contributor (person) read model.
package contributor

import "github.com/cinedex-cloud/cinedex/internal/domain/work"

// Credit is one (work, role) pair in a contributor's filmography.
type Credit struct {
	WorkID string    `json:"work_id"`
	Role   work.Role `json:"role"`
}

// Contributor is a person in the catalog. Credits does not exist as a field
// on the contributor's own document; it is assembled by querying the work
// index once per role.
type Contributor struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Credits  []Credit `json:"credits"`
}
