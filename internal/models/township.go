package models

import "time"

// Township is the municipal tenant that scopes admins, assignments and reporting
type Township struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
