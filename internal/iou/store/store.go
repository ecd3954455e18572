// Package store persists IOUs.
//
// Error contract:
//   - FindByID and Execute return sentinel.ErrNotFound for unknown IOUs
//   - Create returns sentinel.ErrConflict when the id already exists
//   - validate errors passed to Execute are returned unchanged and nothing is written
//
// List results are ordered newest first.
package store

import (
	"strings"

	"ria/internal/iou/models"
)

func matchesQuery(i *models.IOU, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Description), strings.ToLower(query))
}
