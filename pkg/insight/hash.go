package insight

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ContentHash derives the dedup key for an insight from its parent id, type
// and normalized title. Two insights describing the same finding on the same
// parent always collide here regardless of title casing or padding.
func ContentHash(parentId uuid.UUID, insightType string, title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	payload := fmt.Sprintf("%s_%s_%s", parentId, insightType, normalized)
	return fmt.Sprintf("%x", md5.Sum([]byte(payload)))
}
