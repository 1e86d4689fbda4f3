package db

import "strings"

// LikeEscape is the escape clause matching EscapeLike.
const LikeEscape = `ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// PrefixPattern returns a LIKE pattern matching values starting with prefix.
func PrefixPattern(prefix string) string {
	return EscapeLike(prefix) + "%"
}

// ContainsPattern returns a LIKE pattern matching values containing s.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
