package pkg

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/domain"
)

const (
	defaultPage = 1

	// DefaultPageSize is the fixed server page size; list responses never
	// carry more rows than this.
	DefaultPageSize = 15
)

// validFieldName matches only identifiers safe to splice into SQL.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts the page number and search term from query params.
// Invalid or missing page values fall back to page 1; the search term is
// trimmed and lowercased.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	return domain.PageRequest{
		Page:   page,
		Search: strings.ToLower(strings.TrimSpace(c.Query("search"))),
	}
}

// Search returns a GORM scope that matches the term as a case-insensitive
// substring against any of the given fields. Field names are validated
// against a strict pattern before being spliced into SQL; an empty term or
// field list yields a no-op scope.
func Search(term string, fields []string) func(db *gorm.DB) *gorm.DB {
	term = strings.ToLower(strings.TrimSpace(term))

	safe := make([]string, 0, len(fields))
	for _, f := range fields {
		if validFieldName.MatchString(f) {
			safe = append(safe, f)
		}
	}

	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(safe) == 0 {
			return db
		}
		pattern := "%" + escapeLike(term) + "%"
		cond := db.Session(&gorm.Session{NewDB: true}).
			Where("LOWER("+safe[0]+") LIKE ?", pattern)
		for _, f := range safe[1:] {
			cond = cond.Or("LOWER("+f+") LIKE ?", pattern)
		}
		return db.Where(cond)
	}
}

// escapeLike escapes LIKE metacharacters in a user-supplied search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
